package setting

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/stickspnw/sticks-work-center/internal/dto"
	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	service "github.com/stickspnw/sticks-work-center/internal/service/setting"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/transport/http/setting")

const logoRoute = "/settings/branding/logo"

// Handler exposes settings and branding endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a settings Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance. The logo download stays open
// so the login page can render it.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	e.GET(logoRoute, h.logo)

	g := e.Group("/settings", auth.Require())
	g.GET("", h.all)
	g.GET("/branding", h.branding, auth.RequireAdmin())
	g.POST("/branding/company-name", h.setCompanyName, auth.RequireAdmin())
	g.POST("/branding/logo", h.uploadLogo, auth.RequireAdmin())
}

func (h *Handler) all(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.all")
	defer span.End()

	values, err := h.svc.All(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(values).Build()
}

func (h *Handler) branding(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.branding")
	defer span.End()

	branding, err := h.svc.GetBranding(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(branding)).Build()
}

func (h *Handler) setCompanyName(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)

	var payload struct {
		CompanyName string `json:"companyName"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.setCompanyName")
	defer span.End()

	branding, err := h.svc.SetCompanyName(ctx, payload.CompanyName, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(branding)).Build()
}

func (h *Handler) uploadLogo(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)

	file, err := c.FormFile("logo")
	if err != nil {
		return b.WithError(errorbank.BadRequest("logo file is required", errorbank.WithCause(err))).Build()
	}
	src, err := file.Open()
	if err != nil {
		return b.WithError(errorbank.Internal("failed to read upload", errorbank.WithCause(err))).Build()
	}
	defer src.Close()

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.uploadLogo")
	defer span.End()

	branding, err := h.svc.SaveLogo(ctx, file.Filename, file.Size, src, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(branding)).Build()
}

func (h *Handler) logo(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "settings.logo")
	defer span.End()

	path, err := h.svc.LogoPath(ctx)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	if path == "" {
		return response.New(c).WithStatus(http.StatusNotFound).WithError(errorbank.NotFound("no logo uploaded")).Build()
	}
	return c.File(path)
}

func toDTO(branding service.Branding) dto.BrandingResponse {
	out := dto.BrandingResponse{
		BrandName:   branding.BrandName,
		CompanyName: branding.CompanyName,
	}
	if branding.HasLogo {
		out.LogoURL = logoRoute
	}
	return out
}
