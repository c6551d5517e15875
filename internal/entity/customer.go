package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Customer is the live customer record. Orders copy the fields they need at
// creation time, so edits and archival here never touch historical orders.
type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID              string    `bun:",pk"`
	Name            string    `bun:"name,notnull"`
	Phone           string    `bun:"phone"`
	Email           string    `bun:"email"`
	ShippingAddress string    `bun:"shipping_address,notnull"`
	IsArchived      bool      `bun:"is_archived,notnull,default:false"`
	DateAdded       time.Time `bun:"date_added,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
