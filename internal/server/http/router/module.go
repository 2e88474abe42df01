package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"omsrelay/internal/storage/postgres"
	"omsrelay/internal/telemetry"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(setup)

type routerParams struct {
	fx.In

	Store     *postgres.Store
	Telemetry *telemetry.Telemetry
	Logger    *slog.Logger
}

func setup(p routerParams) *gin.Engine {
	var metrics http.Handler = p.Telemetry.Handler()
	return Setup(p.Store, metrics, p.Logger)
}
