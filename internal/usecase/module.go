package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"omsrelay/internal/sink/rabbit"
	"omsrelay/internal/storage/postgres"
	"omsrelay/internal/telemetry"
)

// Module wires the order router.
var Module = fx.Options(
	fx.Provide(func(s *postgres.Store) OrderStore { return s }),
	fx.Provide(func(p rabbit.Publisher) EventSink { return p }),
	fx.Provide(newOrderRouter),
)

type routerParams struct {
	fx.In

	Store     OrderStore
	Sink      EventSink
	Telemetry telemetry.Tracker
	Logger    *slog.Logger
}

func newOrderRouter(p routerParams) *OrderRouter {
	return NewOrderRouter(p.Store, p.Sink, p.Telemetry, p.Logger)
}
