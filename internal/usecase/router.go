package usecase

import (
	"context"
	"log/slog"

	domainErrors "omsrelay/internal/domain/errors"
	"omsrelay/internal/domain/model"
	"omsrelay/internal/telemetry"
)

// OrderStore persists one order record into its status table.
type OrderStore interface {
	Insert(ctx context.Context, order *model.Order) error
}

// EventSink forwards one serialized order to the event stream.
type EventSink interface {
	Publish(ctx context.Context, order *model.Order) error
}

// OrderRouter dispatches orders by status: the three known statuses go
// to their table, anything else skips persistence but still reaches
// the event sink. Every order is forwarded exactly once.
type OrderRouter struct {
	store     OrderStore
	sink      EventSink
	telemetry telemetry.Tracker
	logger    *slog.Logger
}

func NewOrderRouter(store OrderStore, sink EventSink, tracker telemetry.Tracker, logger *slog.Logger) *OrderRouter {
	return &OrderRouter{store: store, sink: sink, telemetry: tracker, logger: logger}
}

// Route persists and forwards one order. A returned error means the
// order was not fully routed and its notification must not be
// acknowledged; the event-sink forward still happens on every path,
// and a sink failure alone never fails the route.
func (r *OrderRouter) Route(ctx context.Context, order *model.Order) error {
	defer r.forward(ctx, order)

	amount, err := order.Amount()
	if err != nil {
		r.telemetry.TrackException(domainErrors.StageRoute, err)
		return err
	}

	switch status := order.Status.Canonical(); status {
	case model.StatusWaitingSellerConfirmation, model.StatusPaymentApproved, model.StatusCanceled:
		r.trackOrder(order, amount)
		if err := r.store.Insert(ctx, order); err != nil {
			r.telemetry.TrackException(domainErrors.StagePersist, err)
			return err
		}
	case model.StatusUnrecognized:
		// Forward-but-don't-persist: the stream sees every status,
		// the tables only the closed set.
		r.logger.Debug("status not persisted", slog.String("order", order.OrderID), slog.String("status", string(order.Status)))
	}

	return nil
}

func (r *OrderRouter) forward(ctx context.Context, order *model.Order) {
	if err := r.sink.Publish(ctx, order); err != nil {
		r.telemetry.TrackException(domainErrors.StagePublish, err)
	}
}

func (r *OrderRouter) trackOrder(order *model.Order, amount float64) {
	r.telemetry.TrackEvent("Order", map[string]string{
		"AccountName":  order.AccountName,
		"AffiliateId":  order.AffiliateID,
		"Origin":       order.Origin,
		"SalesChannel": order.SalesChannel,
		"Status":       string(order.Status),
		"LastChange":   order.LastChange,
	})
	r.telemetry.TrackMetric("OrderAmount", amount)
	r.telemetry.OrderRouted(string(order.Status), amount)
}
