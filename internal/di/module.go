package di

import (
	"go.uber.org/fx"

	"omsrelay/internal/adapter/oms"
	"omsrelay/internal/app"
	"omsrelay/internal/config"
	"omsrelay/internal/logger"
	"omsrelay/internal/server/http/router"
	"omsrelay/internal/sink/rabbit"
	"omsrelay/internal/storage/postgres"
	"omsrelay/internal/telemetry"
	"omsrelay/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		postgres.Module,
		rabbit.Module,
		oms.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
