package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

// LineItemInput is one requested order line.
type LineItemInput struct {
	ProductID         string
	Qty               int
	OverrideUnitPrice *float64
	OverrideReason    string
}

// priceLineItems turns requested lines into immutable snapshots. The catalog
// price and name are copied at resolution time; an override wins when
// supplied and non-negative. The catalog itself is never written. Any
// failure rejects the whole batch.
func priceLineItems(orderID string, inputs []LineItemInput, catalog map[string]*entity.Product) ([]*entity.LineItem, error) {
	items := make([]*entity.LineItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Qty <= 0 {
			return nil, errorbank.BadRequest(
				fmt.Sprintf("line %d: quantity must be a positive integer", i+1),
				errorbank.WithDetail("productId", in.ProductID),
			)
		}
		product, ok := catalog[in.ProductID]
		if !ok {
			return nil, errorbank.NotFound(
				"product not found",
				errorbank.WithDetail("productId", in.ProductID),
			)
		}
		if in.OverrideUnitPrice != nil && *in.OverrideUnitPrice < 0 {
			return nil, errorbank.BadRequest(
				fmt.Sprintf("line %d: override price must not be negative", i+1),
				errorbank.WithDetail("productId", in.ProductID),
			)
		}

		catalogPrice := product.Price
		unitFinal := catalogPrice
		overridden := in.OverrideUnitPrice != nil
		if overridden {
			unitFinal = *in.OverrideUnitPrice
		}

		items = append(items, &entity.LineItem{
			ID:                       uuid.NewString(),
			OrderID:                  orderID,
			ProductID:                product.ID,
			ProductNameSnapshot:      product.Name,
			CatalogUnitPriceSnapshot: catalogPrice,
			UnitPriceFinal:           unitFinal,
			Qty:                      in.Qty,
			LineTotal:                float64(in.Qty) * unitFinal,
			IsPriceOverridden:        overridden,
			OverrideReason:           in.OverrideReason,
		})
	}
	return items, nil
}

// OrderTotal sums stored line totals. Totals are never recomputed from live
// catalog prices.
func OrderTotal(items []*entity.LineItem) float64 {
	var total float64
	for _, li := range items {
		total += li.LineTotal
	}
	return total
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
