package test

import (
	"context"
	"sync"
	"time"

	"omsrelay/internal/domain/model"
)

// StoreStub records inserted orders and optionally injects failures.
type StoreStub struct {
	InsertFn func(context.Context, *model.Order) error

	mu       sync.Mutex
	Inserted []*model.Order
}

func (s *StoreStub) Insert(ctx context.Context, order *model.Order) error {
	if s.InsertFn != nil {
		if err := s.InsertFn(ctx, order); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inserted = append(s.Inserted, order)
	return nil
}

func (s *StoreStub) InsertedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Inserted)
}

// SinkStub records published orders and optionally injects failures.
type SinkStub struct {
	PublishFn func(context.Context, *model.Order) error

	mu        sync.Mutex
	Published []*model.Order
}

func (s *SinkStub) Publish(ctx context.Context, order *model.Order) error {
	if s.PublishFn != nil {
		if err := s.PublishFn(ctx, order); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Published = append(s.Published, order)
	return nil
}

func (s *SinkStub) PublishedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Published)
}

// TrackerStub collects telemetry calls for assertions.
type TrackerStub struct {
	mu         sync.Mutex
	Events     []string
	Metrics    map[string]float64
	Exceptions []string
	Routed     []string
	FeedCounts []int
	Cycles     []string
}

func (t *TrackerStub) TrackEvent(name string, props map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Events = append(t.Events, name)
}

func (t *TrackerStub) TrackMetric(name string, value float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Metrics == nil {
		t.Metrics = map[string]float64{}
	}
	t.Metrics[name] = value
}

func (t *TrackerStub) TrackException(stage string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Exceptions = append(t.Exceptions, stage)
}

func (t *TrackerStub) FeedRetrieved(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.FeedCounts = append(t.FeedCounts, count)
}

func (t *TrackerStub) OrderRouted(status string, amount float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Routed = append(t.Routed, status)
}

func (t *TrackerStub) CycleObserved(outcome string, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Cycles = append(t.Cycles, outcome)
}

func (t *TrackerStub) ExceptionStages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.Exceptions...)
}

func (t *TrackerStub) CycleOutcomes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.Cycles...)
}

// RelayFacadeStub mimics poller interactions with the relay facade.
type RelayFacadeStub struct {
	Feeds       [][]model.FeedNotification
	PendingFn   func(context.Context) ([]model.FeedNotification, error)
	FetchFn     func(context.Context, string, model.Status) (*model.Order, error)
	RouteFn     func(context.Context, *model.Order) error
	AckFn       func(context.Context, string) error
	SyntheticFn func(int) []*model.Order

	mu        sync.Mutex
	feedCalls int
	Fetched   []string
	RoutedIDs []string
	Acked     []string
}

func (s *RelayFacadeStub) Lock()   { s.mu.Lock() }
func (s *RelayFacadeStub) Unlock() { s.mu.Unlock() }

func (s *RelayFacadeStub) PendingNotifications(ctx context.Context) ([]model.FeedNotification, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedCalls < len(s.Feeds) {
		feed := s.Feeds[s.feedCalls]
		s.feedCalls++
		return feed, nil
	}
	return nil, nil
}

func (s *RelayFacadeStub) FeedCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedCalls
}

func (s *RelayFacadeStub) FetchOrder(ctx context.Context, orderID string, hint model.Status) (*model.Order, error) {
	if s.FetchFn != nil {
		return s.FetchFn(ctx, orderID, hint)
	}
	s.mu.Lock()
	s.Fetched = append(s.Fetched, orderID)
	s.mu.Unlock()
	return &model.Order{OrderID: orderID, Status: hint, Value: "1000"}, nil
}

func (s *RelayFacadeStub) RouteOrder(ctx context.Context, order *model.Order) error {
	if s.RouteFn != nil {
		return s.RouteFn(ctx, order)
	}
	s.mu.Lock()
	s.RoutedIDs = append(s.RoutedIDs, order.OrderID)
	s.mu.Unlock()
	return nil
}

func (s *RelayFacadeStub) Acknowledge(ctx context.Context, token string) error {
	if s.AckFn != nil {
		return s.AckFn(ctx, token)
	}
	s.mu.Lock()
	s.Acked = append(s.Acked, token)
	s.mu.Unlock()
	return nil
}

func (s *RelayFacadeStub) AckedTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Acked...)
}

func (s *RelayFacadeStub) SyntheticOrders(n int) []*model.Order {
	if s.SyntheticFn != nil {
		return s.SyntheticFn(n)
	}
	orders := make([]*model.Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, &model.Order{OrderID: "synthetic", Status: model.StatusCanceled, Value: "100"})
	}
	return orders
}
