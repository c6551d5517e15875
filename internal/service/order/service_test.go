package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	customerrepo "github.com/stickspnw/sticks-work-center/internal/repository/customer"
	orderrepo "github.com/stickspnw/sticks-work-center/internal/repository/order"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

// Stub implementations with overridable behavior.

type storeStub struct {
	AllocateOrderNumberFunc func(ctx context.Context) (string, error)
	CreateOrderFunc         func(ctx context.Context, order *entity.Order, items []*entity.LineItem, history []*entity.OrderHistory) error
	GetByIDFunc             func(ctx context.Context, id string) (*entity.Order, error)
	GetLiteFunc             func(ctx context.Context, id string) (*entity.Order, error)
	ListByStatusFunc        func(ctx context.Context, status string) ([]*entity.Order, error)
	ListFinishedFunc        func(ctx context.Context) ([]*entity.Order, error)
	SearchFunc              func(ctx context.Context, q string, limit int) ([]*entity.Order, error)
	TransitionFunc          func(ctx context.Context, order *entity.Order, from entity.OrderStatus, history *entity.OrderHistory) error
	ListAttachmentsFunc     func(ctx context.Context, orderID string) ([]*entity.Attachment, error)
	GetAttachmentFunc       func(ctx context.Context, orderID, attachmentID string) (*entity.Attachment, error)
	CreateAttachmentFunc    func(ctx context.Context, att *entity.Attachment, v1 *entity.AttachmentVersion, history *entity.OrderHistory) error
	AddVersionFunc          func(ctx context.Context, version *entity.AttachmentVersion, history *entity.OrderHistory) error
	ArchiveAttachmentFunc   func(ctx context.Context, attachmentID string, history *entity.OrderHistory) error
}

func (s *storeStub) AllocateOrderNumber(ctx context.Context) (string, error) {
	return s.AllocateOrderNumberFunc(ctx)
}

func (s *storeStub) CreateOrder(ctx context.Context, order *entity.Order, items []*entity.LineItem, history []*entity.OrderHistory) error {
	return s.CreateOrderFunc(ctx, order, items, history)
}

func (s *storeStub) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return s.GetByIDFunc(ctx, id)
}

func (s *storeStub) GetLite(ctx context.Context, id string) (*entity.Order, error) {
	return s.GetLiteFunc(ctx, id)
}

func (s *storeStub) ListByStatus(ctx context.Context, status string) ([]*entity.Order, error) {
	return s.ListByStatusFunc(ctx, status)
}

func (s *storeStub) ListFinished(ctx context.Context) ([]*entity.Order, error) {
	return s.ListFinishedFunc(ctx)
}

func (s *storeStub) Search(ctx context.Context, q string, limit int) ([]*entity.Order, error) {
	return s.SearchFunc(ctx, q, limit)
}

func (s *storeStub) Transition(ctx context.Context, order *entity.Order, from entity.OrderStatus, history *entity.OrderHistory) error {
	return s.TransitionFunc(ctx, order, from, history)
}

func (s *storeStub) ListAttachments(ctx context.Context, orderID string) ([]*entity.Attachment, error) {
	return s.ListAttachmentsFunc(ctx, orderID)
}

func (s *storeStub) GetAttachment(ctx context.Context, orderID, attachmentID string) (*entity.Attachment, error) {
	return s.GetAttachmentFunc(ctx, orderID, attachmentID)
}

func (s *storeStub) CreateAttachment(ctx context.Context, att *entity.Attachment, v1 *entity.AttachmentVersion, history *entity.OrderHistory) error {
	return s.CreateAttachmentFunc(ctx, att, v1, history)
}

func (s *storeStub) AddVersion(ctx context.Context, version *entity.AttachmentVersion, history *entity.OrderHistory) error {
	return s.AddVersionFunc(ctx, version, history)
}

func (s *storeStub) ArchiveAttachment(ctx context.Context, attachmentID string, history *entity.OrderHistory) error {
	return s.ArchiveAttachmentFunc(ctx, attachmentID, history)
}

type catalogStub struct {
	products map[string]*entity.Product
}

func (c *catalogStub) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product)
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type customersStub struct {
	customers map[string]*entity.Customer
}

func (c *customersStub) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	if customer, ok := c.customers[id]; ok {
		return customer, nil
	}
	return nil, customerrepo.ErrNotFound
}

func newTestService(store Store) *Service {
	return &Service{
		store:   store,
		catalog: &catalogStub{products: testCatalog()},
		customers: &customersStub{customers: map[string]*entity.Customer{
			"cust-1": {
				ID:              "cust-1",
				Name:            "Dana Wheeler",
				Phone:           "555-0102",
				Email:           "dana@example.com",
				ShippingAddress: "12 Cedar Ln",
			},
		}},
		logger: zap.NewNop(),
	}
}

func TestCreateSnapshotsCustomerAndWritesHistory(t *testing.T) {
	var created *entity.Order
	var createdItems []*entity.LineItem
	var createdHistory []*entity.OrderHistory

	store := &storeStub{
		AllocateOrderNumberFunc: func(context.Context) (string, error) { return "ORD000042", nil },
		CreateOrderFunc: func(_ context.Context, order *entity.Order, items []*entity.LineItem, history []*entity.OrderHistory) error {
			created, createdItems, createdHistory = order, items, history
			return nil
		},
	}
	svc := newTestService(store)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: "cust-1",
		Items:      []LineItemInput{{ProductID: "p-oak", Qty: 2}},
	}, "user-1")
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "ORD000042", order.OrderNumber)
	assert.Equal(t, entity.OrderStatusWIP, order.Status)
	assert.Equal(t, "Dana Wheeler", order.CustomerNameSnapshot)
	assert.Equal(t, "12 Cedar Ln", order.CustomerShippingAddressSnapshot)
	assert.Nil(t, order.FinishedAt)

	require.Len(t, createdItems, 1)
	assert.Equal(t, 90.0, createdItems[0].LineTotal)

	require.Len(t, createdHistory, 2)
	assert.Equal(t, entity.EventOrderCreated, createdHistory[0].EventType)
	assert.Equal(t, entity.EventLineItemsAdded, createdHistory[1].EventType)
	assert.Equal(t, "user-1", createdHistory[0].ActorUserID)
}

func TestCreateWithoutItemsWritesSingleHistoryEntry(t *testing.T) {
	var createdHistory []*entity.OrderHistory
	store := &storeStub{
		AllocateOrderNumberFunc: func(context.Context) (string, error) { return "ORD000001", nil },
		CreateOrderFunc: func(_ context.Context, _ *entity.Order, _ []*entity.LineItem, history []*entity.OrderHistory) error {
			createdHistory = history
			return nil
		},
	}
	svc := newTestService(store)

	order, err := svc.Create(context.Background(), CreateOrderInput{CustomerID: "cust-1"}, "user-1")
	require.NoError(t, err)
	assert.Empty(t, order.LineItems)
	require.Len(t, createdHistory, 1)
	assert.Equal(t, entity.EventOrderCreated, createdHistory[0].EventType)
}

func TestCreateRejectsUnknownCustomer(t *testing.T) {
	svc := newTestService(&storeStub{})

	_, err := svc.Create(context.Background(), CreateOrderInput{CustomerID: "cust-missing"}, "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestCreateMapsAllocationContention(t *testing.T) {
	store := &storeStub{
		AllocateOrderNumberFunc: func(context.Context) (string, error) { return "", orderrepo.ErrContention },
	}
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), CreateOrderInput{CustomerID: "cust-1"}, "user-1")
	require.Error(t, err)
	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindConcurrency, appErr.Kind())
	assert.True(t, errorbank.Retryable(appErr))
}

func TestCompleteTransitionsWIPOrder(t *testing.T) {
	var transitioned *entity.Order
	var history *entity.OrderHistory
	store := &storeStub{
		GetLiteFunc: func(_ context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, OrderNumber: "ORD000007", Status: entity.OrderStatusWIP}, nil
		},
		TransitionFunc: func(_ context.Context, order *entity.Order, from entity.OrderStatus, h *entity.OrderHistory) error {
			transitioned, history = order, h
			assert.Equal(t, entity.OrderStatusWIP, from)
			return nil
		},
	}
	svc := newTestService(store)

	order, err := svc.Complete(context.Background(), "ord-7", "jw", "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusFinished, order.Status)
	require.NotNil(t, order.FinishedAt)
	require.NotNil(t, transitioned)
	require.NotNil(t, history)
	assert.Equal(t, entity.EventStatusChanged, history.EventType)
	assert.Equal(t, "JW", history.Initials)
}

func TestCompleteRejectsNonWIP(t *testing.T) {
	store := &storeStub{
		GetLiteFunc: func(_ context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, Status: entity.OrderStatusFinished}, nil
		},
	}
	svc := newTestService(store)

	_, err := svc.Complete(context.Background(), "ord-7", "JW", "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestCompleteRejectsBadInitials(t *testing.T) {
	svc := newTestService(&storeStub{})

	for _, raw := range []string{"", "J", "JWXY", "J2"} {
		_, err := svc.Complete(context.Background(), "ord-7", raw, "user-1")
		require.Error(t, err)
		assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
	}
}

func TestCompleteMapsConcurrentStatusChange(t *testing.T) {
	store := &storeStub{
		GetLiteFunc: func(_ context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, Status: entity.OrderStatusWIP}, nil
		},
		TransitionFunc: func(context.Context, *entity.Order, entity.OrderStatus, *entity.OrderHistory) error {
			return orderrepo.ErrStatusChanged
		},
	}
	svc := newTestService(store)

	_, err := svc.Complete(context.Background(), "ord-7", "JW", "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestSoftDeleteRequiresFinished(t *testing.T) {
	store := &storeStub{
		GetLiteFunc: func(_ context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, Status: entity.OrderStatusWIP}, nil
		},
	}
	svc := newTestService(store)

	_, err := svc.SoftDelete(context.Background(), "ord-7", "JW", "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestSoftDeleteTransitionsFinishedOrder(t *testing.T) {
	var history *entity.OrderHistory
	store := &storeStub{
		GetLiteFunc: func(_ context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, OrderNumber: "ORD000009", Status: entity.OrderStatusFinished}, nil
		},
		TransitionFunc: func(_ context.Context, order *entity.Order, from entity.OrderStatus, h *entity.OrderHistory) error {
			history = h
			assert.Equal(t, entity.OrderStatusFinished, from)
			return nil
		},
	}
	svc := newTestService(store)

	order, err := svc.SoftDelete(context.Background(), "ord-9", "kt", "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDeleted, order.Status)
	require.NotNil(t, order.DeletedAt)
	require.NotNil(t, history)
	assert.Equal(t, entity.EventOrderDeleted, history.EventType)
	assert.Equal(t, "KT", history.Initials)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc := newTestService(&storeStub{})

	_, err := svc.List(context.Background(), "BOGUS")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestListDefaultsToWIP(t *testing.T) {
	var seen string
	store := &storeStub{
		ListByStatusFunc: func(_ context.Context, status string) ([]*entity.Order, error) {
			seen = status
			return nil, nil
		},
	}
	svc := newTestService(store)

	_, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusWIP), seen)
}
