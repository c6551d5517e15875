package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/stickspnw/sticks-work-center/internal/database"
	"github.com/stickspnw/sticks-work-center/internal/entity"
)

// ErrNotFound is returned when a customer is missing.
var ErrNotFound = errors.New("customer not found")

// Repository encapsulates read/write access for customers.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// List returns unarchived customers, newest first, optionally filtered by a
// free-text query over name, phone and email.
func (r *Repository) List(ctx context.Context, q string) ([]*entity.Customer, error) {
	var customers []*entity.Customer
	query := r.reader.NewSelect().
		Model(&customers).
		Where("is_archived = FALSE").
		Order("date_added DESC")
	if q != "" {
		pattern := "%" + q + "%"
		query = query.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
			return g.
				Where("LOWER(name) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(phone) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(email) LIKE LOWER(?)", pattern)
		})
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return customers, nil
}

// Search matches unarchived customers for the global search dropdown.
func (r *Repository) Search(ctx context.Context, q string, limit int) ([]*entity.Customer, error) {
	pattern := "%" + q + "%"
	var customers []*entity.Customer
	err := r.reader.NewSelect().
		Model(&customers).
		Where("is_archived = FALSE").
		WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
			return g.
				Where("LOWER(name) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(phone) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(email) LIKE LOWER(?)", pattern)
		}).
		Order("date_added DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// GetByID fetches a customer by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	customer := new(entity.Customer)
	err := r.reader.NewSelect().Model(customer).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// Create persists a new customer.
func (r *Repository) Create(ctx context.Context, customer *entity.Customer) error {
	_, err := r.writer.NewInsert().Model(customer).Exec(ctx)
	return err
}

// Update rewrites the editable customer fields.
func (r *Repository) Update(ctx context.Context, customer *entity.Customer) error {
	res, err := r.writer.NewUpdate().
		Model(customer).
		Column("name", "phone", "email", "shipping_address").
		Where("id = ?", customer.ID).
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

// Archive hides the customer from default listings. Orders keep their
// snapshots, so nothing historical changes.
func (r *Repository) Archive(ctx context.Context, id string) error {
	res, err := r.writer.NewUpdate().
		Model((*entity.Customer)(nil)).
		Set("is_archived = TRUE").
		Where("id = ?", id).
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
