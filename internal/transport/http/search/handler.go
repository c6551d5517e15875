package search

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	service "github.com/stickspnw/sticks-work-center/internal/service/search"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
)

var httpTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/transport/http/search")

// Handler exposes the global search endpoint over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a search Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	e.GET("/search", h.query, auth.Require())
}

func (h *Handler) query(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "search.query")
	defer span.End()

	results, err := h.svc.Query(ctx, c.QueryParam("q"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(results).Build()
}
