package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/config"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	"github.com/stickspnw/sticks-work-center/internal/messaging"
	customerrepo "github.com/stickspnw/sticks-work-center/internal/repository/customer"
	orderrepo "github.com/stickspnw/sticks-work-center/internal/repository/order"
	productrepo "github.com/stickspnw/sticks-work-center/internal/repository/product"
	auditsvc "github.com/stickspnw/sticks-work-center/internal/service/audit"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
	"github.com/stickspnw/sticks-work-center/pkg/initials"
)

var serviceTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/service/order")

// Store is the persistence surface the service needs from the order
// repository.
type Store interface {
	AllocateOrderNumber(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, order *entity.Order, items []*entity.LineItem, history []*entity.OrderHistory) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetLite(ctx context.Context, id string) (*entity.Order, error)
	ListByStatus(ctx context.Context, status string) ([]*entity.Order, error)
	ListFinished(ctx context.Context) ([]*entity.Order, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Order, error)
	Transition(ctx context.Context, order *entity.Order, from entity.OrderStatus, history *entity.OrderHistory) error
	ListAttachments(ctx context.Context, orderID string) ([]*entity.Attachment, error)
	GetAttachment(ctx context.Context, orderID, attachmentID string) (*entity.Attachment, error)
	CreateAttachment(ctx context.Context, att *entity.Attachment, v1 *entity.AttachmentVersion, history *entity.OrderHistory) error
	AddVersion(ctx context.Context, version *entity.AttachmentVersion, history *entity.OrderHistory) error
	ArchiveAttachment(ctx context.Context, attachmentID string, history *entity.OrderHistory) error
}

// Catalog resolves products for pricing. The service only ever reads it.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
}

// Customers resolves the customer whose fields get snapshotted at creation.
type Customers interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}

// Service encapsulates business logic around work orders: pricing, the
// lifecycle state machine and attachment versioning.
type Service struct {
	store     Store
	catalog   Catalog
	customers Customers
	audit     *auditsvc.Service
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders    *orderrepo.Repository
	Products  *productrepo.Repository
	Customers *customerrepo.Repository
	Audit     *auditsvc.Service
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:     p.Orders,
		catalog:   p.Products,
		customers: p.Customers,
		audit:     p.Audit,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// CreateOrderInput is the request to create a work order.
type CreateOrderInput struct {
	CustomerID string
	Items      []LineItemInput
}

// Create allocates an order number, prices the requested lines against the
// current catalog and persists the aggregate with its creation history.
// Creation is all-or-nothing: any pricing or persistence failure leaves
// nothing behind (the allocated number is consumed, which is an accepted
// gap under rollback).
func (s *Service) Create(ctx context.Context, in CreateOrderInput, actorID string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.String("customer.id", in.CustomerID),
		attribute.Int("order.line_items", len(in.Items)),
	))
	defer span.End()

	if in.CustomerID == "" {
		return nil, errorbank.BadRequest("customerId is required")
	}

	customer, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, customerrepo.ErrNotFound) {
			return nil, errorbank.NotFound("customer not found")
		}
		return nil, errorbank.Internal("failed to resolve customer", errorbank.WithCause(err))
	}

	orderID := uuid.NewString()

	var items []*entity.LineItem
	if len(in.Items) > 0 {
		ids := make([]string, 0, len(in.Items))
		for _, item := range in.Items {
			ids = append(ids, item.ProductID)
		}
		catalog, err := s.catalog.GetByIDs(ctx, ids)
		if err != nil {
			return nil, errorbank.Internal("failed to resolve products", errorbank.WithCause(err))
		}
		items, err = priceLineItems(orderID, in.Items, catalog)
		if err != nil {
			return nil, err
		}
	}

	number, err := s.store.AllocateOrderNumber(ctx)
	if err != nil {
		if errors.Is(err, orderrepo.ErrContention) {
			return nil, errorbank.Concurrency("order number allocation contended", errorbank.WithCause(err))
		}
		return nil, errorbank.Internal("failed to allocate order number", errorbank.WithCause(err))
	}

	now := nowUTC()
	order := &entity.Order{
		ID:          orderID,
		OrderNumber: number,
		Status:      entity.OrderStatusWIP,

		CustomerID:                      customer.ID,
		CustomerNameSnapshot:            customer.Name,
		CustomerPhoneSnapshot:           customer.Phone,
		CustomerEmailSnapshot:           customer.Email,
		CustomerShippingAddressSnapshot: customer.ShippingAddress,

		CreatedAt: now,
	}

	history := []*entity.OrderHistory{{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		EventType:   entity.EventOrderCreated,
		ActorUserID: actorID,
		Summary:     "Order created",
		Details:     map[string]any{"orderNumber": number, "customerId": customer.ID},
		CreatedAt:   now,
	}}
	if len(items) > 0 {
		history = append(history, &entity.OrderHistory{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			EventType:   entity.EventLineItemsAdded,
			ActorUserID: actorID,
			Summary:     fmt.Sprintf("Line items added: %d", len(items)),
			Details:     map[string]any{"count": len(items)},
			CreatedAt:   now,
		})
	}

	if err := s.store.CreateOrder(ctx, order, items, history); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		if errors.Is(err, orderrepo.ErrContention) {
			return nil, errorbank.Concurrency("order creation contended", errorbank.WithCause(err))
		}
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	order.LineItems = items
	order.History = history

	s.publishEvent(ctx, eventOrderCreated, order)
	return order, nil
}

// Get retrieves the fully resolved aggregate, soft-deleted orders included.
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	s.warnBrokenVersionChains(order.Attachments)
	return order, nil
}

// List returns orders filtered by status. Accepted filters are the lifecycle
// states plus ALL (everything except DELETED); empty defaults to WIP.
func (s *Service) List(ctx context.Context, status string) ([]*entity.Order, error) {
	if status == "" {
		status = string(entity.OrderStatusWIP)
	}
	if status != "ALL" && !entity.OrderStatus(status).Valid() {
		return nil, errorbank.BadRequest("unknown status filter", errorbank.WithDetail("status", status))
	}
	orders, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// ListFinished returns completed orders with line items for export.
func (s *Service) ListFinished(ctx context.Context) ([]*entity.Order, error) {
	orders, err := s.store.ListFinished(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to list completed orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Search matches non-deleted orders for the global search box.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]*entity.Order, error) {
	orders, err := s.store.Search(ctx, q, limit)
	if err != nil {
		return nil, errorbank.Internal("order search failed", errorbank.WithCause(err))
	}
	return orders, nil
}

// Complete moves a WIP order to FINISHED, stamping finishedAt and appending
// the STATUS_CHANGED history entry atomically with the transition.
func (s *Service) Complete(ctx context.Context, id, rawInitials, actorID string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Complete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	code, ok := initials.Normalize(rawInitials)
	if !ok {
		return nil, errorbank.BadRequest("initials must be 2-3 letters")
	}

	order, err := s.getForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(entity.OrderStatusFinished) {
		return nil, errorbank.Conflict(
			"only work-in-progress orders can be completed",
			errorbank.WithDetail("status", string(order.Status)),
		)
	}

	now := nowUTC()
	from := order.Status
	order.Status = entity.OrderStatusFinished
	order.FinishedAt = &now

	history := &entity.OrderHistory{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		EventType:   entity.EventStatusChanged,
		Initials:    code,
		ActorUserID: actorID,
		Summary:     "Status changed: Work In Progress -> Completed Works",
		Details:     map[string]any{"from": string(from), "to": string(entity.OrderStatusFinished)},
		CreatedAt:   now,
	}

	if err := s.transition(ctx, order, from, history); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.publishEvent(ctx, eventOrderCompleted, order)
	return order, nil
}

// SoftDelete moves a FINISHED order to DELETED. The row and its line items
// and history stay queryable by id; only default listings drop it.
func (s *Service) SoftDelete(ctx context.Context, id, rawInitials, actorID string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.SoftDelete", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	code, ok := initials.Normalize(rawInitials)
	if !ok {
		return nil, errorbank.BadRequest("initials must be 2-3 letters")
	}

	order, err := s.getForTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(entity.OrderStatusDeleted) {
		return nil, errorbank.Conflict(
			"only completed orders can be deleted",
			errorbank.WithDetail("status", string(order.Status)),
		)
	}

	now := nowUTC()
	from := order.Status
	order.Status = entity.OrderStatusDeleted
	order.DeletedAt = &now

	history := &entity.OrderHistory{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		EventType:   entity.EventOrderDeleted,
		Initials:    code,
		ActorUserID: actorID,
		Summary:     fmt.Sprintf("Deleted order %s", order.OrderNumber),
		Details:     map[string]any{"orderNumber": order.OrderNumber},
		CreatedAt:   now,
	}

	if err := s.transition(ctx, order, from, history); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, auditsvc.Entry{
			ActorID:  actorID,
			Initials: code,
			Action:   entity.AuditOrderDeleted,
			Details:  map[string]any{"orderId": order.ID, "orderNumber": order.OrderNumber},
		})
	}

	s.publishEvent(ctx, eventOrderDeleted, order)
	return order, nil
}

func (s *Service) getForTransition(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.store.GetLite(ctx, id)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	return order, nil
}

func (s *Service) transition(ctx context.Context, order *entity.Order, from entity.OrderStatus, history *entity.OrderHistory) error {
	err := s.store.Transition(ctx, order, from, history)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, orderrepo.ErrStatusChanged):
		return errorbank.Conflict("order status changed concurrently")
	case errors.Is(err, orderrepo.ErrContention):
		return errorbank.Concurrency("status transition contended", errorbank.WithCause(err))
	default:
		return errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}
}

const (
	eventOrderCreated   = "order.created"
	eventOrderCompleted = "order.completed"
	eventOrderDeleted   = "order.deleted"
)

// OrderEvent is emitted on the message bus after a lifecycle mutation
// commits. Publishing is best-effort and never rolls back the mutation.
type OrderEvent struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

func (s *Service) publishEvent(ctx context.Context, eventType string, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderEvent{
		Type:        eventType,
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		At:          nowUTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order event", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte("order-"+order.ID), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order event", zap.String("type", eventType), zap.Error(err))
		}
	}
}
