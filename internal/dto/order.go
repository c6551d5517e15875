package dto

import "time"

// OrderSummaryResponse is the listing/search shape for orders.
type OrderSummaryResponse struct {
	ID           string     `json:"id"`
	OrderNumber  string     `json:"orderNumber"`
	Status       string     `json:"status"`
	CustomerName string     `json:"customerName"`
	CreatedAt    time.Time  `json:"createdAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

// OrderResponse is the fully resolved order aggregate.
type OrderResponse struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`

	CustomerID              string `json:"customerId"`
	CustomerName            string `json:"customerName"`
	CustomerPhone           string `json:"customerPhone,omitempty"`
	CustomerEmail           string `json:"customerEmail,omitempty"`
	CustomerShippingAddress string `json:"customerShippingAddress"`

	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`

	LineItems   []LineItemResponse     `json:"lineItems"`
	Attachments []AttachmentResponse   `json:"attachments,omitempty"`
	History     []OrderHistoryResponse `json:"history,omitempty"`
}

// LineItemResponse mirrors the stored line-item snapshot.
type LineItemResponse struct {
	ID                       string  `json:"id"`
	ProductID                string  `json:"productId"`
	ProductNameSnapshot      string  `json:"productNameSnapshot"`
	CatalogUnitPriceSnapshot float64 `json:"catalogUnitPriceSnapshot"`
	UnitPriceFinal           float64 `json:"unitPriceFinal"`
	Qty                      int     `json:"qty"`
	LineTotal                float64 `json:"lineTotal"`
	IsPriceOverridden        bool    `json:"isPriceOverridden"`
}

// OrderHistoryResponse is one per-order history entry.
type OrderHistoryResponse struct {
	ID        string         `json:"id"`
	EventType string         `json:"eventType"`
	Initials  string         `json:"initials,omitempty"`
	Summary   string         `json:"summary"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AttachmentResponse exposes an attachment with its computed current version.
type AttachmentResponse struct {
	ID             string                      `json:"id"`
	OrderID        string                      `json:"orderId"`
	Label          string                      `json:"label"`
	AttachmentType string                      `json:"attachmentType"`
	IsArchived     bool                        `json:"isArchived"`
	CreatedAt      time.Time                   `json:"createdAt"`
	CurrentVersion *AttachmentVersionResponse  `json:"currentVersion,omitempty"`
	Versions       []AttachmentVersionResponse `json:"versions,omitempty"`
}

// AttachmentVersionResponse is one entry of a version chain.
type AttachmentVersionResponse struct {
	ID            string    `json:"id"`
	VersionNumber int       `json:"versionNumber"`
	URL           string    `json:"url"`
	Note          string    `json:"note,omitempty"`
	IsCurrent     bool      `json:"isCurrent"`
	CreatedAt     time.Time `json:"createdAt"`
}
