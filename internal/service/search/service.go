package search

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/dto"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	customersvc "github.com/stickspnw/sticks-work-center/internal/service/customer"
	ordersvc "github.com/stickspnw/sticks-work-center/internal/service/order"
)

// maxResults caps the combined dropdown payload.
const maxResults = 12

// Orders is the order lookup the search box needs.
type Orders interface {
	Search(ctx context.Context, q string, limit int) ([]*entity.Order, error)
}

// Customers is the customer lookup the search box needs.
type Customers interface {
	Search(ctx context.Context, q string, limit int) ([]*entity.Customer, error)
}

// Service backs the global search box: one query, mixed order and customer
// results.
type Service struct {
	orders    Orders
	customers Customers
	logger    *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Orders    *ordersvc.Service
	Customers *customersvc.Service
	Logger    *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{orders: p.Orders, customers: p.Customers, logger: p.Logger}
}

// looksLikeOrderNumber matches full or partial order numbers, with or
// without the prefix.
var looksLikeOrderNumber = regexp.MustCompile(`(?i)^(ord)?-?\d+$`)

// Query runs the combined lookup. Orders lead when the query resembles an
// order number; otherwise customers lead. Empty queries return no results.
func (s *Service) Query(ctx context.Context, q string) ([]dto.SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []dto.SearchResult{}, nil
	}

	orders, err := s.orders.Search(ctx, q, maxResults)
	if err != nil {
		return nil, err
	}
	customers, err := s.customers.Search(ctx, q, maxResults)
	if err != nil {
		return nil, err
	}

	orderResults := make([]dto.SearchResult, 0, len(orders))
	for _, o := range orders {
		orderResults = append(orderResults, dto.SearchResult{
			Type:         "ORDER",
			ID:           o.ID,
			Label:        o.OrderNumber,
			OrderNumber:  o.OrderNumber,
			CustomerName: o.CustomerNameSnapshot,
			Status:       string(o.Status),
		})
	}
	customerResults := make([]dto.SearchResult, 0, len(customers))
	for _, c := range customers {
		customerResults = append(customerResults, dto.SearchResult{
			Type:  "CUSTOMER",
			ID:    c.ID,
			Label: c.Name,
			Phone: c.Phone,
			Email: c.Email,
		})
	}

	var combined []dto.SearchResult
	if looksLikeOrderNumber.MatchString(q) {
		combined = append(orderResults, customerResults...)
	} else {
		combined = append(customerResults, orderResults...)
	}
	if len(combined) > maxResults {
		combined = combined[:maxResults]
	}
	return combined, nil
}
