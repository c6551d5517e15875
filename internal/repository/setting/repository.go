package setting

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/stickspnw/sticks-work-center/internal/database"
	"github.com/stickspnw/sticks-work-center/internal/entity"
)

// Repository encapsulates access to key/value application settings.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// All returns every setting as a map.
func (r *Repository) All(ctx context.Context) (map[string]string, error) {
	var rows []*entity.Setting
	if err := r.reader.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Get returns the values for the requested keys; absent keys are omitted.
func (r *Repository) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}
	var rows []*entity.Setting
	err := r.reader.NewSelect().
		Model(&rows).
		Where("key IN (?)", bun.In(keys)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Upsert writes a setting, inserting or replacing as needed.
func (r *Repository) Upsert(ctx context.Context, key, value string) error {
	_, err := r.writer.NewInsert().
		Model(&entity.Setting{Key: key, Value: value}).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}
