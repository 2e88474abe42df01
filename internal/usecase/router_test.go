package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	domainErrors "omsrelay/internal/domain/errors"
	"omsrelay/internal/domain/model"
	testhelpers "omsrelay/internal/test"
)

func newTestRouter() (*OrderRouter, *testhelpers.StoreStub, *testhelpers.SinkStub, *testhelpers.TrackerStub) {
	store := &testhelpers.StoreStub{}
	sink := &testhelpers.SinkStub{}
	tracker := &testhelpers.TrackerStub{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewOrderRouter(store, sink, tracker, logger), store, sink, tracker
}

func approvedOrder() *model.Order {
	return &model.Order{
		AccountName:  "shop",
		OrderID:      "1",
		Origin:       "o",
		AffiliateID:  "a",
		SalesChannel: "2",
		Value:        "1000",
		CreationDate: "2024-01-01T00:00:00",
		LastChange:   "2024-01-01T00:00:00",
		Status:       model.StatusPaymentApproved,
	}
}

func TestRoutePersistsKnownStatusAndForwards(t *testing.T) {
	router, store, sink, tracker := newTestRouter()

	if err := router.Route(context.Background(), approvedOrder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.InsertedCount() != 1 {
		t.Fatalf("expected 1 insert, got %d", store.InsertedCount())
	}
	if sink.PublishedCount() != 1 {
		t.Fatalf("expected 1 publish, got %d", sink.PublishedCount())
	}
	if len(tracker.Events) != 1 || tracker.Events[0] != "Order" {
		t.Fatalf("expected one Order event, got %v", tracker.Events)
	}
	if tracker.Metrics["OrderAmount"] != 10.00 {
		t.Fatalf("expected normalized amount 10.00, got %v", tracker.Metrics["OrderAmount"])
	}
}

func TestRouteUnrecognizedStatusForwardsWithoutPersisting(t *testing.T) {
	router, store, sink, _ := newTestRouter()

	order := approvedOrder()
	order.Status = model.Status("invoiced")
	if err := router.Route(context.Background(), order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.InsertedCount() != 0 {
		t.Fatal("unrecognized status must never reach a persistence sink")
	}
	if sink.PublishedCount() != 1 {
		t.Fatalf("event sink must be called exactly once, got %d", sink.PublishedCount())
	}
}

func TestRouteInvalidAmount(t *testing.T) {
	router, store, sink, tracker := newTestRouter()

	order := approvedOrder()
	order.Value = "not-a-number"
	err := router.Route(context.Background(), order)
	if !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if store.InsertedCount() != 0 {
		t.Fatal("invalid amount must abort persistence")
	}
	if sink.PublishedCount() != 1 {
		t.Fatal("order must still reach the event sink")
	}
	stages := tracker.ExceptionStages()
	if len(stages) != 1 || stages[0] != domainErrors.StageRoute {
		t.Fatalf("expected one route-stage exception, got %v", stages)
	}
}

func TestRoutePersistenceFailure(t *testing.T) {
	router, store, sink, tracker := newTestRouter()
	store.InsertFn = func(context.Context, *model.Order) error {
		return domainErrors.ErrDuplicateRecord
	}

	err := router.Route(context.Background(), approvedOrder())
	if !errors.Is(err, domainErrors.ErrDuplicateRecord) {
		t.Fatalf("expected duplicate-record error, got %v", err)
	}
	if sink.PublishedCount() != 1 {
		t.Fatal("persistence failure must not suppress the event-sink forward")
	}
	stages := tracker.ExceptionStages()
	if len(stages) != 1 || stages[0] != domainErrors.StagePersist {
		t.Fatalf("expected persist-stage exception, got %v", stages)
	}
}

func TestRoutePublishFailureDoesNotFailRoute(t *testing.T) {
	router, store, sink, tracker := newTestRouter()
	sink.PublishFn = func(context.Context, *model.Order) error {
		return domainErrors.ErrPublishFailure
	}

	if err := router.Route(context.Background(), approvedOrder()); err != nil {
		t.Fatalf("publish failure must be fire-and-forget, got %v", err)
	}
	if store.InsertedCount() != 1 {
		t.Fatal("order must still persist")
	}
	stages := tracker.ExceptionStages()
	if len(stages) != 1 || stages[0] != domainErrors.StagePublish {
		t.Fatalf("expected publish-stage exception, got %v", stages)
	}
}

func TestRouteAllKnownStatuses(t *testing.T) {
	for _, status := range []model.Status{
		model.StatusWaitingSellerConfirmation,
		model.StatusPaymentApproved,
		model.StatusCanceled,
	} {
		router, store, sink, _ := newTestRouter()
		order := approvedOrder()
		order.Status = status
		if err := router.Route(context.Background(), order); err != nil {
			t.Fatalf("status %s: unexpected error: %v", status, err)
		}
		if store.InsertedCount() != 1 || sink.PublishedCount() != 1 {
			t.Fatalf("status %s: expected 1 insert and 1 publish", status)
		}
	}
}
