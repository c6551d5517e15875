package order

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stickspnw/sticks-work-center/internal/dto"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	exportsvc "github.com/stickspnw/sticks-work-center/internal/service/export"
	service "github.com/stickspnw/sticks-work-center/internal/service/order"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc    *service.Service
	export *exportsvc.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, export *exportsvc.Service) *Handler {
	return &Handler{svc: svc, export: export}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/orders", auth.Require())
	g.GET("", h.list)
	g.POST("", h.create, auth.RequireWrite())
	g.GET("/:id", h.getByID)
	g.GET("/:id/pdf", h.pdf)
	g.POST("/:id/complete", h.complete, auth.RequireWrite())
	g.DELETE("/:id", h.softDelete, auth.RequireAdmin())
	g.POST("/export/completed", h.exportCompleted, auth.RequireAdmin())

	g.GET("/:id/attachments", h.listAttachments)
	g.POST("/:id/attachments", h.createAttachment, auth.RequireWrite())
	g.POST("/:id/attachments/:attachmentId/versions", h.addVersion, auth.RequireWrite())
	g.DELETE("/:id/attachments/:attachmentId", h.archiveAttachment, auth.RequireWrite())
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, c.QueryParam("status"))
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderSummaryResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toSummaryDTO(o))
	}
	return b.WithData(out).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)

	var payload struct {
		CustomerID string `json:"customerId"`
		Items      []struct {
			ProductID         string   `json:"productId"`
			Qty               int      `json:"qty"`
			OverrideUnitPrice *float64 `json:"overrideUnitPrice"`
			OverrideReason    string   `json:"overrideReason"`
		} `json:"items"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	in := service.CreateOrderInput{CustomerID: payload.CustomerID}
	for _, item := range payload.Items {
		in.Items = append(in.Items, service.LineItemInput{
			ProductID:         item.ProductID,
			Qty:               item.Qty,
			OverrideUnitPrice: item.OverrideUnitPrice,
			OverrideReason:    item.OverrideReason,
		})
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	defer span.End()

	order, err := h.svc.Create(ctx, in, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(order)).Build()
}

func (h *Handler) complete(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")

	var payload struct {
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.complete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := h.svc.Complete(ctx, id, payload.Initials, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) softDelete(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")

	var payload struct {
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.softDelete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := h.svc.SoftDelete(ctx, id, payload.Initials, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) exportCompleted(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)

	var payload struct {
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.exportCompleted")
	defer span.End()

	data, err := h.export.CompletedCSV(ctx, payload.Initials, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}

	filename := fmt.Sprintf("completed-orders-%s.csv", exportsvc.FilenameTimestamp(time.Now()))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", data)
}

func (h *Handler) pdf(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.pdf", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	data, err := h.export.OrderPDF(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "order-"+id+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

func (h *Handler) listAttachments(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listAttachments", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	atts, err := h.svc.ListAttachments(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.AttachmentResponse, 0, len(atts))
	for _, att := range atts {
		out = append(out, toAttachmentDTO(att))
	}
	return b.WithData(out).Build()
}

func (h *Handler) createAttachment(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")

	var payload struct {
		Label    string `json:"label"`
		URL      string `json:"url"`
		Note     string `json:"note"`
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.createAttachment", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	att, err := h.svc.CreateAttachment(ctx, id, service.CreateAttachmentInput{
		Label:    payload.Label,
		URL:      payload.URL,
		Note:     payload.Note,
		Initials: payload.Initials,
	}, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toAttachmentDTO(att)).Build()
}

func (h *Handler) addVersion(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")
	attachmentID := c.Param("attachmentId")

	var payload struct {
		URL      string `json:"url"`
		Note     string `json:"note"`
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.addAttachmentVersion", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("attachment.id", attachmentID),
	))
	defer span.End()

	att, err := h.svc.AddVersion(ctx, id, attachmentID, service.AddVersionInput{
		URL:      payload.URL,
		Note:     payload.Note,
		Initials: payload.Initials,
	}, principal.UserID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toAttachmentDTO(att)).Build()
}

func (h *Handler) archiveAttachment(c echo.Context) error {
	b := response.New(c)
	principal, _ := middleware.Principal(c)
	id := c.Param("id")
	attachmentID := c.Param("attachmentId")

	var payload struct {
		Initials string `json:"initials"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.archiveAttachment", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("attachment.id", attachmentID),
	))
	defer span.End()

	if err := h.svc.ArchiveAttachment(ctx, id, attachmentID, payload.Initials, principal.UserID); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func toSummaryDTO(o *entity.Order) dto.OrderSummaryResponse {
	return dto.OrderSummaryResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		Status:       string(o.Status),
		CustomerName: o.CustomerNameSnapshot,
		CreatedAt:    o.CreatedAt,
		FinishedAt:   o.FinishedAt,
	}
}

func toDTO(o *entity.Order) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),

		CustomerID:              o.CustomerID,
		CustomerName:            o.CustomerNameSnapshot,
		CustomerPhone:           o.CustomerPhoneSnapshot,
		CustomerEmail:           o.CustomerEmailSnapshot,
		CustomerShippingAddress: o.CustomerShippingAddressSnapshot,

		CreatedAt:  o.CreatedAt,
		FinishedAt: o.FinishedAt,

		LineItems: make([]dto.LineItemResponse, 0, len(o.LineItems)),
	}
	for _, item := range o.LineItems {
		out.LineItems = append(out.LineItems, dto.LineItemResponse{
			ID:                       item.ID,
			ProductID:                item.ProductID,
			ProductNameSnapshot:      item.ProductNameSnapshot,
			CatalogUnitPriceSnapshot: item.CatalogUnitPriceSnapshot,
			UnitPriceFinal:           item.UnitPriceFinal,
			Qty:                      item.Qty,
			LineTotal:                item.LineTotal,
			IsPriceOverridden:        item.IsPriceOverridden,
		})
	}
	for _, att := range o.Attachments {
		out.Attachments = append(out.Attachments, toAttachmentDTO(att))
	}
	for _, h := range o.History {
		out.History = append(out.History, dto.OrderHistoryResponse{
			ID:        h.ID,
			EventType: h.EventType,
			Initials:  h.Initials,
			Summary:   h.Summary,
			Details:   h.Details,
			Timestamp: h.CreatedAt,
		})
	}
	return out
}

func toAttachmentDTO(att *entity.Attachment) dto.AttachmentResponse {
	out := dto.AttachmentResponse{
		ID:             att.ID,
		OrderID:        att.OrderID,
		Label:          att.Label,
		AttachmentType: att.AttachmentType,
		IsArchived:     att.IsArchived,
		CreatedAt:      att.CreatedAt,
	}
	if current, _ := att.CurrentVersion(); current != nil {
		v := toVersionDTO(current)
		out.CurrentVersion = &v
	}
	for _, version := range att.Versions {
		out.Versions = append(out.Versions, toVersionDTO(version))
	}
	return out
}

func toVersionDTO(v *entity.AttachmentVersion) dto.AttachmentVersionResponse {
	return dto.AttachmentVersionResponse{
		ID:            v.ID,
		VersionNumber: v.VersionNumber,
		URL:           v.URL,
		Note:          v.Note,
		IsCurrent:     v.IsCurrent,
		CreatedAt:     v.CreatedAt,
	}
}
