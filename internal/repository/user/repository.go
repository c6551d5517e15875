package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/stickspnw/sticks-work-center/internal/database"
	"github.com/stickspnw/sticks-work-center/internal/entity"
)

// Sentinel errors surfaced to the service layer.
var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// Repository encapsulates read/write access for user accounts.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// List returns all users, oldest first.
func (r *Repository) List(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := r.reader.NewSelect().Model(&users).Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := new(entity.User)
	err := r.reader.NewSelect().Model(u).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByUsername fetches a user by username. Login reads go to the writer so
// a fresh account is visible immediately.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u := new(entity.User)
	err := r.writer.NewSelect().Model(u).Where("username = ?", username).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create persists a new account. A username collision maps to
// ErrUsernameTaken via the pre-check; the unique index backs it up.
func (r *Repository) Create(ctx context.Context, u *entity.User) error {
	exists, err := r.writer.NewSelect().
		Model((*entity.User)(nil)).
		Where("username = ?", u.Username).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return ErrUsernameTaken
	}
	_, err = r.writer.NewInsert().Model(u).Exec(ctx)
	return err
}

// SetStatus updates the account status.
func (r *Repository) SetStatus(ctx context.Context, id string, status entity.UserStatus) error {
	return r.updateColumn(ctx, id, "status = ?", string(status))
}

// SetRole updates the account role.
func (r *Repository) SetRole(ctx context.Context, id string, role entity.Role) error {
	return r.updateColumn(ctx, id, "role = ?", string(role))
}

// SetPasswordHash replaces the stored credential hash.
func (r *Repository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.updateColumn(ctx, id, "password_hash = ?", hash)
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.writer.NewUpdate().
		Model((*entity.User)(nil)).
		Set("last_login_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *Repository) updateColumn(ctx context.Context, id, set string, arg any) error {
	res, err := r.writer.NewUpdate().
		Model((*entity.User)(nil)).
		Set(set, arg).
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
