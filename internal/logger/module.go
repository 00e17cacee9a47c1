package logger

import "go.uber.org/fx"

// Module provides the service-tagged JSON logger.
var Module = fx.Provide(New)
