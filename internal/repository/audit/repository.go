package audit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/stickspnw/sticks-work-center/internal/database"
	"github.com/stickspnw/sticks-work-center/internal/entity"
)

// Repository persists the general, best-effort audit trail.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Append inserts one audit entry.
func (r *Repository) Append(ctx context.Context, entry *entity.AuditLog) error {
	_, err := r.writer.NewInsert().Model(entry).Exec(ctx)
	return err
}

// Recent returns the newest entries with their acting user resolved.
func (r *Repository) Recent(ctx context.Context, take int) ([]*entity.AuditLog, error) {
	var rows []*entity.AuditLog
	err := r.reader.NewSelect().
		Model(&rows).
		Relation("ActorUser").
		Order("created_at DESC").
		Limit(take).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
