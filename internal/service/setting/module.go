package setting

import "go.uber.org/fx"

// Module provides the settings service to Fx.
var Module = fx.Provide(NewService)
