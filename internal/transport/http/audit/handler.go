package audit

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/stickspnw/sticks-work-center/internal/dto"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	service "github.com/stickspnw/sticks-work-center/internal/service/audit"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
)

var httpTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/transport/http/audit")

// Handler exposes the audit log over HTTP. Admin-only.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an audit Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	e.GET("/audit", h.recent, auth.Require(), auth.RequireAdmin())
}

func (h *Handler) recent(c echo.Context) error {
	b := response.New(c)

	take, _ := strconv.Atoi(c.QueryParam("take"))

	ctx, span := httpTracer.Start(c.Request().Context(), "audit.recent")
	defer span.End()

	entries, err := h.svc.Recent(ctx, take)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toDTO(entry))
	}
	return b.WithData(out).Build()
}

func toDTO(entry *entity.AuditLog) dto.AuditEntryResponse {
	out := dto.AuditEntryResponse{
		ID:           entry.ID,
		Action:       entry.Action,
		Initials:     entry.Initials,
		Details:      entry.Details,
		TargetUserID: entry.TargetUserID,
		CreatedAt:    entry.CreatedAt,
	}
	if entry.ActorUser != nil {
		out.Actor = &dto.AuditActor{
			ID:          entry.ActorUser.ID,
			Username:    entry.ActorUser.Username,
			DisplayName: entry.ActorUser.DisplayName,
		}
	}
	return out
}
