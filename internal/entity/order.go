package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus enumerates the order lifecycle states.
type OrderStatus string

const (
	OrderStatusWIP      OrderStatus = "WIP"
	OrderStatusFinished OrderStatus = "FINISHED"
	OrderStatusDeleted  OrderStatus = "DELETED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusWIP, OrderStatusFinished, OrderStatusDeleted:
		return true
	}
	return false
}

// CanTransitionTo enforces WIP -> FINISHED -> DELETED with no skips.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusWIP:
		return next == OrderStatusFinished
	case OrderStatusFinished:
		return next == OrderStatusDeleted
	}
	return false
}

// OrderSequence is the singleton counter row behind order numbers.
type OrderSequence struct {
	bun.BaseModel `bun:"table:order_sequences"`

	ID      int64 `bun:",pk"`
	Current int64 `bun:"current,notnull,default:0"`
}

// Order is the work-order aggregate root. Customer fields are snapshots
// copied at creation time and never refreshed from the customer record.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID          string      `bun:",pk"`
	OrderNumber string      `bun:"order_number,notnull"`
	Status      OrderStatus `bun:"status,notnull"`

	CustomerID                      string `bun:"customer_id,notnull"`
	CustomerNameSnapshot            string `bun:"customer_name_snapshot,notnull"`
	CustomerPhoneSnapshot           string `bun:"customer_phone_snapshot"`
	CustomerEmailSnapshot           string `bun:"customer_email_snapshot"`
	CustomerShippingAddressSnapshot string `bun:"customer_shipping_address_snapshot,notnull"`

	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	FinishedAt *time.Time `bun:"finished_at"`
	DeletedAt  *time.Time `bun:"deleted_at"`

	Customer    *Customer       `bun:"rel:belongs-to,join:customer_id=id"`
	LineItems   []*LineItem     `bun:"rel:has-many,join:id=order_id"`
	Attachments []*Attachment   `bun:"rel:has-many,join:id=order_id"`
	History     []*OrderHistory `bun:"rel:has-many,join:id=order_id"`
}

// LineItem is one product/quantity/price entry within an order. All price
// fields are fixed at creation; the catalog is never consulted afterwards.
type LineItem struct {
	bun.BaseModel `bun:"table:line_items"`

	ID                       string  `bun:",pk"`
	OrderID                  string  `bun:"order_id,notnull"`
	ProductID                string  `bun:"product_id,notnull"`
	ProductNameSnapshot      string  `bun:"product_name_snapshot,notnull"`
	CatalogUnitPriceSnapshot float64 `bun:"catalog_unit_price_snapshot,notnull"`
	UnitPriceFinal           float64 `bun:"unit_price_final,notnull"`
	Qty                      int     `bun:"qty,notnull"`
	LineTotal                float64 `bun:"line_total,notnull"`
	IsPriceOverridden        bool    `bun:"is_price_overridden,notnull,default:false"`
	OverrideReason           string  `bun:"override_reason"`
}

// Order history event types.
const (
	EventOrderCreated           = "ORDER_CREATED"
	EventLineItemsAdded         = "LINE_ITEMS_ADDED"
	EventStatusChanged          = "STATUS_CHANGED"
	EventOrderDeleted           = "ORDER_DELETED"
	EventAttachmentCreated      = "ATTACHMENT_CREATED"
	EventAttachmentVersionAdded = "ATTACHMENT_VERSION_ADDED"
	EventAttachmentArchived     = "ATTACHMENT_ARCHIVED"
)

// OrderHistory is an append-only history entry owned by one order.
type OrderHistory struct {
	bun.BaseModel `bun:"table:order_histories"`

	ID          string         `bun:",pk"`
	OrderID     string         `bun:"order_id,notnull"`
	EventType   string         `bun:"event_type,notnull"`
	Initials    string         `bun:"initials"`
	ActorUserID string         `bun:"actor_user_id"`
	Summary     string         `bun:"summary,notnull"`
	Details     map[string]any `bun:"details,type:jsonb"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
