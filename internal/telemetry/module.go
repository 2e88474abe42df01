package telemetry

import "go.uber.org/fx"

// Module wires the telemetry tracker into the fx graph.
var Module = fx.Options(
	fx.Provide(New),
	fx.Provide(func(t *Telemetry) Tracker { return t }),
)
