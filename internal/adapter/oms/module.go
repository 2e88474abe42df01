package oms

import (
	"log/slog"

	"go.uber.org/fx"

	"omsrelay/internal/config"
)

// Module exposes the OMS client pool, API client, and synthetic order
// generator to the fx graph.
var Module = fx.Options(
	fx.Provide(newPool),
	fx.Provide(newClient),
	fx.Provide(newGenerator),
)

type poolParams struct {
	fx.In

	Config *config.Config
}

func newPool(p poolParams) *ClientPool {
	return NewClientPool(p.Config.AppKey, p.Config.AppToken, p.Config.HTTPTimeout)
}

type clientParams struct {
	fx.In

	Config *config.Config
	Pool   *ClientPool
	Logger *slog.Logger
}

func newClient(p clientParams) Client {
	return NewHTTPClient(p.Config.AccountName, p.Config.OMSHost, p.Pool, p.Logger)
}

func newGenerator(cfg *config.Config) *Generator {
	return NewGenerator(cfg.AccountName)
}
