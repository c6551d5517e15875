package customer

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stickspnw/sticks-work-center/internal/dto"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	service "github.com/stickspnw/sticks-work-center/internal/service/customer"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/transport/http/customer")

// Handler exposes customer endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a customer Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/customers", auth.Require())
	g.GET("", h.list)
	g.POST("", h.create, auth.RequireWrite())
	g.GET("/:id", h.getByID)
	g.PUT("/:id", h.update, auth.RequireWrite())
	g.DELETE("/:id", h.archive, auth.RequireAdmin())
}

type payload struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
}

func (p payload) input() service.Input {
	return service.Input{
		Name:            p.Name,
		Phone:           p.Phone,
		Email:           p.Email,
		ShippingAddress: p.ShippingAddress,
	}
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.list")
	defer span.End()

	customers, err := h.svc.List(ctx, c.QueryParam("q"))
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, toDTO(customer))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.getByID", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	customer, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(customer)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var p payload
	if err := c.Bind(&p); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.create")
	defer span.End()

	customer, err := h.svc.Create(ctx, p.input())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(customer)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	var p payload
	if err := c.Bind(&p); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.update", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	customer, err := h.svc.Update(ctx, id, p.input())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(customer)).Build()
}

func (h *Handler) archive(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")

	var p struct {
		Initials string `json:"initials"`
	}
	if err := c.Bind(&p); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "customers.archive", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	if err := h.svc.Archive(ctx, id, p.Initials, principal.UserID); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func toDTO(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		Phone:           c.Phone,
		Email:           c.Email,
		ShippingAddress: c.ShippingAddress,
		IsArchived:      c.IsArchived,
		DateAdded:       c.DateAdded,
	}
}
