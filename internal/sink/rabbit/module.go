package rabbit

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"omsrelay/internal/config"
)

// Module wires the AMQP event-stream publisher.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Provide(func(p *AMQPPublisher) Publisher { return p }),
	fx.Invoke(registerLifecycle),
)

type publisherParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPublisher(p publisherParams) (*AMQPPublisher, error) {
	return New(p.Config.BrokerURL, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, publisher *AMQPPublisher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			publisher.Close()
			return nil
		},
	})
}
