package product

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/cache"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	productrepo "github.com/stickspnw/sticks-work-center/internal/repository/product"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

type storeStub struct {
	ListFunc    func(ctx context.Context, onlyActive bool) ([]*entity.Product, error)
	GetByIDFunc func(ctx context.Context, id string) (*entity.Product, error)
	CreateFunc  func(ctx context.Context, product *entity.Product) error
	UpdateFunc  func(ctx context.Context, product *entity.Product) error
}

func (s *storeStub) List(ctx context.Context, onlyActive bool) ([]*entity.Product, error) {
	return s.ListFunc(ctx, onlyActive)
}

func (s *storeStub) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return s.GetByIDFunc(ctx, id)
}

func (s *storeStub) Create(ctx context.Context, product *entity.Product) error {
	return s.CreateFunc(ctx, product)
}

func (s *storeStub) Update(ctx context.Context, product *entity.Product) error {
	return s.UpdateFunc(ctx, product)
}

type cacheStub struct {
	data map[string][]byte
}

func newCacheStub() *cacheStub {
	return &cacheStub{data: map[string][]byte{}}
}

func (c *cacheStub) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (c *cacheStub) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *cacheStub) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func newTestService(store *storeStub, c cache.Store) *Service {
	return &Service{
		store:    store,
		cache:    c,
		cacheTTL: time.Minute,
		logger:   zap.NewNop(),
	}
}

func catalog() []*entity.Product {
	return []*entity.Product{
		{ID: "p-oak", Name: "Oak Walking Stick", Price: 45, Status: entity.ProductStatusActive},
		{ID: "p-engraving", Name: "Engraving", Price: 15, Status: entity.ProductStatusActive},
	}
}

func TestListActivePopulatesCache(t *testing.T) {
	calls := 0
	store := &storeStub{
		ListFunc: func(ctx context.Context, onlyActive bool) ([]*entity.Product, error) {
			calls++
			assert.True(t, onlyActive)
			return catalog(), nil
		},
	}
	c := newCacheStub()
	svc := newTestService(store, c)

	first, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, calls)
	assert.Contains(t, c.data, activeCatalogKey)

	second, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, 1, calls, "second listing should come from cache")
}

func TestListAllBypassesCache(t *testing.T) {
	calls := 0
	store := &storeStub{
		ListFunc: func(ctx context.Context, onlyActive bool) ([]*entity.Product, error) {
			calls++
			assert.False(t, onlyActive)
			return catalog(), nil
		},
	}
	c := newCacheStub()
	c.data[activeCatalogKey] = []byte(`[]`)
	svc := newTestService(store, c)

	_, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestListSurvivesCorruptCacheEntry(t *testing.T) {
	store := &storeStub{
		ListFunc: func(ctx context.Context, onlyActive bool) ([]*entity.Product, error) {
			return catalog(), nil
		},
	}
	c := newCacheStub()
	c.data[activeCatalogKey] = []byte("{not json")
	svc := newTestService(store, c)

	products, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestCreateInvalidatesCache(t *testing.T) {
	store := &storeStub{
		CreateFunc: func(ctx context.Context, product *entity.Product) error {
			return nil
		},
	}
	c := newCacheStub()
	cached, err := json.Marshal(catalog())
	require.NoError(t, err)
	c.data[activeCatalogKey] = cached
	svc := newTestService(store, c)

	product, err := svc.Create(context.Background(), Input{Name: " Cedar Cane ", Price: 55})
	require.NoError(t, err)
	assert.Equal(t, "Cedar Cane", product.Name)
	assert.Equal(t, entity.ProductStatusActive, product.Status)
	assert.NotContains(t, c.data, activeCatalogKey)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(&storeStub{}, newCacheStub())

	_, err := svc.Create(context.Background(), Input{Name: "  ", Price: 10})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())

	_, err = svc.Create(context.Background(), Input{Name: "Cedar Cane", Price: -1})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())

	_, err = svc.Create(context.Background(), Input{Name: "Cedar Cane", Price: 10, Status: entity.ProductStatus("RETIRED")})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestUpdateUnknownProductIsNotFound(t *testing.T) {
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Product, error) {
			return nil, productrepo.ErrNotFound
		},
	}
	svc := newTestService(store, newCacheStub())

	_, err := svc.Update(context.Background(), "missing", Input{Name: "Cedar Cane", Price: 55})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestSetStatusTogglesWhenUnspecified(t *testing.T) {
	var updated *entity.Product
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Product, error) {
			return &entity.Product{ID: id, Name: "Oak Walking Stick", Price: 45, Status: entity.ProductStatusActive}, nil
		},
		UpdateFunc: func(ctx context.Context, product *entity.Product) error {
			updated = product
			return nil
		},
	}
	c := newCacheStub()
	c.data[activeCatalogKey] = []byte(`[]`)
	svc := newTestService(store, c)

	product, err := svc.SetStatus(context.Background(), "p-oak", "")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, entity.ProductStatusDisabled, product.Status)
	assert.NotContains(t, c.data, activeCatalogKey)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Product, error) {
			return &entity.Product{ID: id, Name: "Oak Walking Stick", Status: entity.ProductStatusActive}, nil
		},
	}
	svc := newTestService(store, newCacheStub())

	_, err := svc.SetStatus(context.Background(), "p-oak", entity.ProductStatus("RETIRED"))
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestUpdateDisablesProduct(t *testing.T) {
	var updated *entity.Product
	store := &storeStub{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Product, error) {
			return &entity.Product{ID: id, Name: "Oak Walking Stick", Price: 45, Status: entity.ProductStatusActive}, nil
		},
		UpdateFunc: func(ctx context.Context, product *entity.Product) error {
			updated = product
			return nil
		},
	}
	c := newCacheStub()
	c.data[activeCatalogKey] = []byte(`[]`)
	svc := newTestService(store, c)

	product, err := svc.Update(context.Background(), "p-oak", Input{
		Name:   "Oak Walking Stick",
		Price:  50,
		Status: entity.ProductStatusDisabled,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 50.0, product.Price)
	assert.Equal(t, entity.ProductStatusDisabled, product.Status)
	assert.NotContains(t, c.data, activeCatalogKey)
}
