package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/stickspnw/sticks-work-center/internal/database"
	"github.com/stickspnw/sticks-work-center/internal/entity"
)

// ErrNotFound is returned when a product is missing.
var ErrNotFound = errors.New("product not found")

// Repository encapsulates read/write access for the product catalog.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// List returns products ordered by name, optionally active only.
func (r *Repository) List(ctx context.Context, onlyActive bool) ([]*entity.Product, error) {
	var products []*entity.Product
	q := r.reader.NewSelect().Model(&products).Order("name ASC")
	if onlyActive {
		q = q.Where("status = ?", entity.ProductStatusActive)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID fetches a product by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product := new(entity.Product)
	err := r.reader.NewSelect().Model(product).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetByIDs resolves a batch of products keyed by id. Missing ids are simply
// absent from the map; the caller decides whether that is an error.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	if len(ids) == 0 {
		return map[string]*entity.Product{}, nil
	}
	var products []*entity.Product
	err := r.reader.NewSelect().
		Model(&products).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// Create persists a new catalog entry.
func (r *Repository) Create(ctx context.Context, product *entity.Product) error {
	_, err := r.writer.NewInsert().Model(product).Exec(ctx)
	return err
}

// Update rewrites name, price and status.
func (r *Repository) Update(ctx context.Context, product *entity.Product) error {
	res, err := r.writer.NewUpdate().
		Model(product).
		Column("name", "price", "status", "updated_at").
		Where("id = ?", product.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
