package config

import "go.uber.org/fx"

// Module provides the shop configuration read from flags, env and secret files.
var Module = fx.Provide(Load)
