package product

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/cache"
	"github.com/stickspnw/sticks-work-center/internal/config"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	productrepo "github.com/stickspnw/sticks-work-center/internal/repository/product"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context, onlyActive bool) ([]*entity.Product, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
	Update(ctx context.Context, product *entity.Product) error
}

// Service owns product catalog operations. The active-catalog listing is
// cached; pricing always reads the repository directly so overrides and
// edits take effect immediately.
type Service struct {
	store    Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Products *productrepo.Repository
	Cache    cache.Store
	Config   config.Config
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:    p.Products,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// Input carries the writable product fields.
type Input struct {
	Name   string
	Price  float64
	Status entity.ProductStatus
}

func (in *Input) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if len(in.Name) < 2 {
		return errorbank.BadRequest("name must be at least 2 characters")
	}
	if in.Price < 0 {
		return errorbank.BadRequest("price must not be negative")
	}
	if in.Status == "" {
		in.Status = entity.ProductStatusActive
	}
	if !in.Status.Valid() {
		return errorbank.BadRequest("unknown product status", errorbank.WithDetail("status", string(in.Status)))
	}
	return nil
}

// List returns the catalog. onlyActive limits it to orderable products; that
// view is cached since the order form fetches it on every load.
func (s *Service) List(ctx context.Context, onlyActive bool) ([]*entity.Product, error) {
	if onlyActive {
		if products, err := s.getFromCache(ctx); err == nil {
			return products, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			if s.logger != nil {
				s.logger.Warn("products cache read failed", zap.Error(err))
			}
		}
	}

	products, err := s.store.List(ctx, onlyActive)
	if err != nil {
		return nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}

	if onlyActive {
		if err := s.storeInCache(ctx, products); err != nil {
			if s.logger != nil {
				s.logger.Warn("products cache write failed", zap.Error(err))
			}
		}
	}
	return products, nil
}

// Get retrieves one product regardless of status.
func (s *Service) Get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, productrepo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}
	return product, nil
}

// Create adds a catalog entry.
func (s *Service) Create(ctx context.Context, in Input) (*entity.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Price:     in.Price,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, product); err != nil {
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	return product, nil
}

// Update edits a catalog entry. Historical line items keep their snapshots;
// only orders created after the edit see the new name and price.
func (s *Service) Update(ctx context.Context, id string, in Input) (*entity.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.Price = in.Price
	product.Status = in.Status
	product.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, product); err != nil {
		return nil, errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	return product, nil
}

// SetStatus sets the catalog availability, or toggles it when status is
// empty. Disabled products stay visible on existing orders via snapshots.
func (s *Service) SetStatus(ctx context.Context, id string, status entity.ProductStatus) (*entity.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = entity.ProductStatusActive
		if product.Status == entity.ProductStatusActive {
			status = entity.ProductStatusDisabled
		}
	}
	if !status.Valid() {
		return nil, errorbank.BadRequest("unknown product status", errorbank.WithDetail("status", string(status)))
	}
	product.Status = status
	product.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, product); err != nil {
		return nil, errorbank.Internal("failed to update product status", errorbank.WithCause(err))
	}
	s.invalidate(ctx)
	return product, nil
}

const activeCatalogKey = "products:active"

func (s *Service) getFromCache(ctx context.Context) ([]*entity.Product, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, activeCatalogKey)
	if err != nil {
		return nil, err
	}
	var products []*entity.Product
	if err := json.Unmarshal(bytes, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) storeInCache(ctx context.Context, products []*entity.Product) error {
	if s.cache == nil {
		return nil
	}
	bytes, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, activeCatalogKey, bytes, s.cacheTTL)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, activeCatalogKey); err != nil {
		if s.logger != nil {
			s.logger.Warn("products cache invalidation failed", zap.Error(err))
		}
	}
}
