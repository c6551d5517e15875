package product

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stickspnw/sticks-work-center/internal/dto"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	service "github.com/stickspnw/sticks-work-center/internal/service/product"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/transport/http/product")

// Handler exposes product catalog endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a product Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/products", auth.Require())
	g.GET("", h.list)
	g.POST("", h.create, auth.RequireAdmin())
	g.GET("/:id", h.getByID)
	g.PUT("/:id", h.update, auth.RequireAdmin())
	g.PATCH("/:id/status", h.setStatus, auth.RequireAdmin())
}

type payload struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Status string  `json:"status"`
}

func (p payload) input() service.Input {
	return service.Input{
		Name:   p.Name,
		Price:  p.Price,
		Status: entity.ProductStatus(p.Status),
	}
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.list")
	defer span.End()

	onlyActive := c.QueryParam("active") == "true"
	products, err := h.svc.List(ctx, onlyActive)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, toDTO(product))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "products.getByID", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	product, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(product)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var p payload
	if err := c.Bind(&p); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.create")
	defer span.End()

	product, err := h.svc.Create(ctx, p.input())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(product)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	var p payload
	if err := c.Bind(&p); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.update", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	product, err := h.svc.Update(ctx, id, p.input())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(product)).Build()
}

func (h *Handler) setStatus(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	var p struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&p); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.setStatus", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	product, err := h.svc.SetStatus(ctx, id, entity.ProductStatus(p.Status))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(product)).Build()
}

func toDTO(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Status: string(p.Status),
	}
}
