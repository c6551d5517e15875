package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// ProductStatus enumerates catalog availability.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusDisabled ProductStatus = "DISABLED"
)

// Valid reports whether the status is a known catalog state.
func (s ProductStatus) Valid() bool {
	return s == ProductStatusActive || s == ProductStatusDisabled
}

// Product is a catalog entry. Orders snapshot name and price at creation, so
// later edits never change historical line items.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID        string        `bun:",pk"`
	Name      string        `bun:"name,notnull"`
	Price     float64       `bun:"price,notnull"`
	Status    ProductStatus `bun:"status,notnull"`
	CreatedAt time.Time     `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero"`
}
