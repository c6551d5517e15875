package auth

import (
	"go.uber.org/fx"

	"github.com/labstack/echo/v4"

	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
)

// Module wires HTTP auth handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, auth *middleware.Auth) {
		Register(e, h, auth)
	}),
)
