package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/entity"
)

type ordersStub struct {
	SearchFunc func(ctx context.Context, q string, limit int) ([]*entity.Order, error)
}

func (s *ordersStub) Search(ctx context.Context, q string, limit int) ([]*entity.Order, error) {
	return s.SearchFunc(ctx, q, limit)
}

type customersStub struct {
	SearchFunc func(ctx context.Context, q string, limit int) ([]*entity.Customer, error)
}

func (s *customersStub) Search(ctx context.Context, q string, limit int) ([]*entity.Customer, error) {
	return s.SearchFunc(ctx, q, limit)
}

func newTestSearch(orders *ordersStub, customers *customersStub) *Service {
	return &Service{orders: orders, customers: customers, logger: zap.NewNop()}
}

func fixedResults(orderCount, customerCount int) (*ordersStub, *customersStub) {
	orders := &ordersStub{
		SearchFunc: func(ctx context.Context, q string, limit int) ([]*entity.Order, error) {
			out := make([]*entity.Order, 0, orderCount)
			for i := 0; i < orderCount; i++ {
				out = append(out, &entity.Order{
					ID:                   fmt.Sprintf("o-%d", i),
					OrderNumber:          fmt.Sprintf("ORD%06d", i+1),
					Status:               entity.OrderStatusWIP,
					CustomerNameSnapshot: "Dana Wheeler",
				})
			}
			return out, nil
		},
	}
	customers := &customersStub{
		SearchFunc: func(ctx context.Context, q string, limit int) ([]*entity.Customer, error) {
			out := make([]*entity.Customer, 0, customerCount)
			for i := 0; i < customerCount; i++ {
				out = append(out, &entity.Customer{
					ID:    fmt.Sprintf("c-%d", i),
					Name:  fmt.Sprintf("Customer %d", i),
					Phone: "555-0100",
				})
			}
			return out, nil
		},
	}
	return orders, customers
}

func TestQueryEmptyReturnsNoResults(t *testing.T) {
	svc := newTestSearch(&ordersStub{}, &customersStub{})

	results, err := svc.Query(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryOrderNumberLeadsWithOrders(t *testing.T) {
	orders, customers := fixedResults(2, 2)
	svc := newTestSearch(orders, customers)

	for _, q := range []string{"ORD000042", "ord-42", "42"} {
		results, err := svc.Query(context.Background(), q)
		require.NoError(t, err)
		require.Len(t, results, 4)
		assert.Equal(t, "ORDER", results[0].Type, "query %q", q)
		assert.Equal(t, "CUSTOMER", results[2].Type, "query %q", q)
	}
}

func TestQueryNameLeadsWithCustomers(t *testing.T) {
	orders, customers := fixedResults(1, 2)
	svc := newTestSearch(orders, customers)

	results, err := svc.Query(context.Background(), "wheeler")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "CUSTOMER", results[0].Type)
	assert.Equal(t, "ORDER", results[2].Type)
}

func TestQueryCapsCombinedResults(t *testing.T) {
	orders, customers := fixedResults(10, 10)
	svc := newTestSearch(orders, customers)

	results, err := svc.Query(context.Background(), "dana")
	require.NoError(t, err)
	assert.Len(t, results, maxResults)
	assert.Equal(t, "CUSTOMER", results[0].Type)
}

func TestQueryShapesResultFields(t *testing.T) {
	orders, customers := fixedResults(1, 1)
	svc := newTestSearch(orders, customers)

	results, err := svc.Query(context.Background(), "dana")
	require.NoError(t, err)
	require.Len(t, results, 2)

	customer := results[0]
	assert.Equal(t, "c-0", customer.ID)
	assert.Equal(t, "Customer 0", customer.Label)
	assert.Equal(t, "555-0100", customer.Phone)

	order := results[1]
	assert.Equal(t, "o-0", order.ID)
	assert.Equal(t, "ORD000001", order.Label)
	assert.Equal(t, "ORD000001", order.OrderNumber)
	assert.Equal(t, "Dana Wheeler", order.CustomerName)
	assert.Equal(t, string(entity.OrderStatusWIP), order.Status)
}
