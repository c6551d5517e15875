package user

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stickspnw/sticks-work-center/internal/dto"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	service "github.com/stickspnw/sticks-work-center/internal/service/user"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/transport/http/user")

// Handler exposes account administration endpoints over HTTP. All routes
// are admin-only.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a user Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/users", auth.Require(), auth.RequireAdmin())
	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id/status", h.setStatus)
	g.PATCH("/:id/role", h.setRole)
	g.POST("/:id/reset-password", h.resetPassword)
	g.DELETE("/:id", h.remove)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "users.list")
	defer span.End()

	users, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toDTO(u))
	}
	return b.WithData(out).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)

	var payload struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.create")
	defer span.End()

	u, err := h.svc.Create(ctx, service.CreateInput{
		Username:    payload.Username,
		Password:    payload.Password,
		Name:        payload.Name,
		DisplayName: payload.DisplayName,
		Role:        entity.Role(payload.Role),
	}, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(u)).Build()
}

func (h *Handler) setStatus(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")

	var payload struct {
		Status   string `json:"status"`
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.setStatus", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	u, err := h.svc.SetStatus(ctx, id, entity.UserStatus(payload.Status), payload.Initials, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(u)).Build()
}

func (h *Handler) setRole(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")

	var payload struct {
		Role     string `json:"role"`
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.setRole", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	u, err := h.svc.SetRole(ctx, id, entity.Role(payload.Role), payload.Initials, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(u)).Build()
}

func (h *Handler) resetPassword(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")

	var payload struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.resetPassword", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	if err := h.svc.ResetPassword(ctx, id, payload.Password, principal.UserID); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")

	var payload struct {
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.remove", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id, payload.Initials, principal.UserID); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func toDTO(u *entity.User) dto.UserResponse {
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
