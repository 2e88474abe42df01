package app

import (
	"context"

	"omsrelay/internal/adapter/oms"
	"omsrelay/internal/domain/model"
	"omsrelay/internal/usecase"
)

// RelayFacade binds the OMS adapter, the order router, and the
// synthetic generator behind the single surface the poller consumes.
type RelayFacade struct {
	oms       oms.Client
	router    *usecase.OrderRouter
	generator *oms.Generator
}

func NewRelayFacade(client oms.Client, router *usecase.OrderRouter, generator *oms.Generator) *RelayFacade {
	return &RelayFacade{oms: client, router: router, generator: generator}
}

func (f *RelayFacade) PendingNotifications(ctx context.Context) ([]model.FeedNotification, error) {
	return f.oms.PendingNotifications(ctx)
}

func (f *RelayFacade) FetchOrder(ctx context.Context, orderID string, hint model.Status) (*model.Order, error) {
	return f.oms.FetchOrder(ctx, orderID, hint)
}

func (f *RelayFacade) RouteOrder(ctx context.Context, order *model.Order) error {
	return f.router.Route(ctx, order)
}

func (f *RelayFacade) Acknowledge(ctx context.Context, commitToken string) error {
	return f.oms.Acknowledge(ctx, commitToken)
}

func (f *RelayFacade) SyntheticOrders(n int) []*model.Order {
	return f.generator.Batch(n)
}
