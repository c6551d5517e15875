package setting

import "go.uber.org/fx"

// Module provides the setting repository to Fx.
var Module = fx.Provide(NewRepository)
