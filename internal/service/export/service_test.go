package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	settingsvc "github.com/stickspnw/sticks-work-center/internal/service/setting"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

type ordersStub struct {
	GetFunc          func(ctx context.Context, id string) (*entity.Order, error)
	ListFinishedFunc func(ctx context.Context) ([]*entity.Order, error)
}

func (s *ordersStub) Get(ctx context.Context, id string) (*entity.Order, error) {
	return s.GetFunc(ctx, id)
}

func (s *ordersStub) ListFinished(ctx context.Context) ([]*entity.Order, error) {
	return s.ListFinishedFunc(ctx)
}

type branderStub struct {
	branding settingsvc.Branding
	err      error
}

func (b *branderStub) GetBranding(ctx context.Context) (settingsvc.Branding, error) {
	return b.branding, b.err
}

func finishedOrder() *entity.Order {
	created := time.Date(2026, 7, 14, 9, 0, 0, 0, time.UTC)
	finished := time.Date(2026, 8, 2, 16, 30, 0, 0, time.UTC)
	return &entity.Order{
		ID:                              "o-1",
		OrderNumber:                     "ORD000042",
		Status:                          entity.OrderStatusFinished,
		CustomerNameSnapshot:            "Dana Wheeler",
		CustomerShippingAddressSnapshot: "12 Cedar Ln",
		CreatedAt:                       created,
		FinishedAt:                      &finished,
		LineItems: []*entity.LineItem{
			{ProductNameSnapshot: "Oak Walking Stick", Qty: 2, UnitPriceFinal: 45, LineTotal: 90},
			{ProductNameSnapshot: "Engraving", Qty: 1, UnitPriceFinal: 15, LineTotal: 15},
		},
	}
}

func newTestExport(orders *ordersStub, branding *branderStub) *Service {
	return &Service{
		orders:   orders,
		branding: branding,
		logger:   zap.NewNop(),
	}
}

func TestCompletedCSVShapesRows(t *testing.T) {
	orders := &ordersStub{
		ListFinishedFunc: func(ctx context.Context) ([]*entity.Order, error) {
			return []*entity.Order{finishedOrder()}, nil
		},
	}
	svc := newTestExport(orders, &branderStub{})

	out, err := svc.CompletedCSV(context.Background(), "jw", "user-1")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"Order #", "Customer", "Created Date", "Finished Date", "Products", "Total"}, records[0])
	assert.Equal(t, []string{
		"ORD000042",
		"Dana Wheeler",
		"2026-07-14",
		"2026-08-02",
		"Oak Walking Stick x2; Engraving x1",
		"105.00",
	}, records[1])
}

func TestCompletedCSVRequiresInitials(t *testing.T) {
	svc := newTestExport(&ordersStub{}, &branderStub{})

	_, err := svc.CompletedCSV(context.Background(), "not ok", "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestCompletedCSVEmptyListStillHasHeader(t *testing.T) {
	orders := &ordersStub{
		ListFinishedFunc: func(ctx context.Context) ([]*entity.Order, error) {
			return nil, nil
		},
	}
	svc := newTestExport(orders, &branderStub{})

	out, err := svc.CompletedCSV(context.Background(), "KT", "user-1")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Order #", records[0][0])
}

func TestOrderPDFRendersDocument(t *testing.T) {
	orders := &ordersStub{
		GetFunc: func(ctx context.Context, id string) (*entity.Order, error) {
			return finishedOrder(), nil
		},
	}
	branding := &branderStub{branding: settingsvc.Branding{CompanyName: "Sticks PNW"}}
	svc := newTestExport(orders, branding)

	out, err := svc.OrderPDF(context.Background(), "o-1")
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestOrderPDFSurvivesBrandingFailure(t *testing.T) {
	orders := &ordersStub{
		GetFunc: func(ctx context.Context, id string) (*entity.Order, error) {
			return finishedOrder(), nil
		},
	}
	branding := &branderStub{err: errorbank.Internal("settings unavailable")}
	svc := newTestExport(orders, branding)

	out, err := svc.OrderPDF(context.Background(), "o-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFilenameTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 2, 23, 45, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-02", FilenameTimestamp(now))
}
