package auth

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/stickspnw/sticks-work-center/internal/dto"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	service "github.com/stickspnw/sticks-work-center/internal/service/auth"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/transport/http/auth")

// Handler exposes authentication endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/auth")
	g.POST("/login", h.login)
	g.GET("/me", h.me, auth.Require())
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login")
	defer span.End()

	token, user, err := h.svc.Login(ctx, payload.Username, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.LoginResponse{Token: token, User: toUserDTO(user)}).Build()
}

func (h *Handler) me(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.me")
	defer span.End()

	user, err := h.svc.Me(ctx, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toUserDTO(user)).Build()
}

func toUserDTO(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
