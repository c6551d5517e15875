package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stickspnw/sticks-work-center/internal/config"
	"github.com/stickspnw/sticks-work-center/internal/database"
	"github.com/stickspnw/sticks-work-center/internal/entity"
)

var repoTracer = otel.Tracer("github.com/stickspnw/sticks-work-center/repository/order")

// Sentinel errors surfaced to the service layer.
var (
	ErrNotFound           = errors.New("order not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrDuplicateLabel     = errors.New("attachment label already exists for this order")
	ErrStatusChanged      = errors.New("order status changed concurrently")
	ErrContention         = errors.New("transaction aborted due to contention")
)

const sequenceRowID = 1

// Repository owns persistence for the order aggregate: sequence allocation,
// aggregate creation, lifecycle transitions, attachments and history.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
	seq    config.Sequence
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections, cfg config.Config) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
		seq:    cfg.Sequence,
	}
}

// AllocateOrderNumber hands out the next order number. The increment runs as
// a single transaction holding a row lock on the singleton counter, so
// concurrent callers serialize; the formatted number is returned only after
// the increment committed. Contention aborts are retried a bounded number of
// times, everything else surfaces immediately.
func (r *Repository) AllocateOrderNumber(ctx context.Context) (string, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.AllocateOrderNumber")
	defer span.End()

	var number string
	var err error
	for attempt := 0; attempt <= r.seq.MaxRetries; attempt++ {
		number, err = r.allocateOnce(ctx)
		if err == nil {
			span.SetAttributes(attribute.String("order.number", number))
			return number, nil
		}
		if !errors.Is(err, ErrContention) {
			break
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "allocation failed")
	return "", err
}

func (r *Repository) allocateOnce(ctx context.Context) (string, error) {
	var next int64
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Idempotent bootstrap: the row must exist before it can be locked.
		_, err := tx.NewInsert().
			Model(&entity.OrderSequence{ID: sequenceRowID, Current: 0}).
			Ignore().
			Exec(ctx)
		if err != nil {
			return err
		}

		seq := new(entity.OrderSequence)
		if err := tx.NewSelect().
			Model(seq).
			Where("id = ?", sequenceRowID).
			For("UPDATE").
			Scan(ctx); err != nil {
			return err
		}

		next = seq.Current + 1
		_, err = tx.NewUpdate().
			Model((*entity.OrderSequence)(nil)).
			Set("current = ?", next).
			Where("id = ?", sequenceRowID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return "", classify(err)
	}
	return r.formatNumber(next), nil
}

func (r *Repository) formatNumber(next int64) string {
	return fmt.Sprintf("%s%0*d", r.seq.Prefix, r.seq.Width, next)
}

// CreateOrder persists the composed aggregate: order row, line items and the
// creation history entries commit together or not at all.
func (r *Repository) CreateOrder(ctx context.Context, order *entity.Order, items []*entity.LineItem, history []*entity.OrderHistory) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CreateOrder", trace.WithAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.line_items", len(items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		if len(items) > 0 {
			if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
				return err
			}
		}
		if len(history) > 0 {
			if _, err := tx.NewInsert().Model(&history).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return classify(err)
	}
	return nil
}

// GetByID fetches the full aggregate, including soft-deleted orders.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().
		Model(order).
		Relation("LineItems").
		Relation("Attachments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("is_archived = FALSE")
		}).
		Relation("Attachments.Versions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("version_number DESC")
		}).
		Relation("History", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// GetLite loads the order row only, without relations.
func (r *Repository) GetLite(ctx context.Context, id string) (*entity.Order, error) {
	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListByStatus returns orders newest first. status "ALL" means everything
// except soft-deleted orders.
func (r *Repository) ListByStatus(ctx context.Context, status string) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListByStatus", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	var orders []*entity.Order
	q := r.reader.NewSelect().Model(&orders).Order("created_at DESC")
	if status == "ALL" {
		q = q.Where("status != ?", entity.OrderStatusDeleted)
	} else {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return orders, nil
}

// ListFinished returns completed orders with their line items, newest
// completion first. Used by the completed-orders export.
func (r *Repository) ListFinished(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListFinished")
	defer span.End()

	var orders []*entity.Order
	err := r.reader.NewSelect().
		Model(&orders).
		Relation("LineItems").
		Where("status = ?", entity.OrderStatusFinished).
		Order("finished_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return orders, nil
}

// Search matches non-deleted orders by order number or customer snapshot
// fields, newest first. LOWER(...) LIKE keeps the match case-insensitive on
// every supported dialect.
func (r *Repository) Search(ctx context.Context, q string, limit int) ([]*entity.Order, error) {
	pattern := "%" + q + "%"
	var orders []*entity.Order
	err := r.reader.NewSelect().
		Model(&orders).
		Where("status != ?", entity.OrderStatusDeleted).
		WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
			return g.
				Where("LOWER(order_number) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(customer_name_snapshot) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(customer_phone_snapshot) LIKE LOWER(?)", pattern).
				WhereOr("LOWER(customer_email_snapshot) LIKE LOWER(?)", pattern)
		}).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition moves an order from one status to the next and appends the
// history entry in the same transaction. The update is guarded on the
// expected source status, so a concurrent transition surfaces as
// ErrStatusChanged instead of silently overwriting.
func (r *Repository) Transition(ctx context.Context, order *entity.Order, from entity.OrderStatus, history *entity.OrderHistory) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Transition", trace.WithAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.status.from", string(from)),
		attribute.String("order.status.to", string(order.Status)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(order).
			Column("status", "finished_at", "deleted_at").
			Where("id = ?", order.ID).
			Where("status = ?", from).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrStatusChanged
		}
		_, err = tx.NewInsert().Model(history).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
		return classify(err)
	}
	return nil
}

// ListAttachments returns the order's unarchived attachments with their
// version chains, newest version first.
func (r *Repository) ListAttachments(ctx context.Context, orderID string) ([]*entity.Attachment, error) {
	var attachments []*entity.Attachment
	err := r.reader.NewSelect().
		Model(&attachments).
		Relation("Versions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("version_number DESC")
		}).
		Where("order_id = ?", orderID).
		Where("is_archived = FALSE").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// GetAttachment loads one attachment belonging to the given order, with its
// version chain newest first.
func (r *Repository) GetAttachment(ctx context.Context, orderID, attachmentID string) (*entity.Attachment, error) {
	att := new(entity.Attachment)
	err := r.reader.NewSelect().
		Model(att).
		Relation("Versions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("version_number DESC")
		}).
		Where("id = ?", attachmentID).
		Where("order_id = ?", orderID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttachmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return att, nil
}

// CreateAttachment inserts the attachment, its first (current) version and
// the history entry in one transaction. A label collision on the order maps
// to ErrDuplicateLabel.
func (r *Repository) CreateAttachment(ctx context.Context, att *entity.Attachment, v1 *entity.AttachmentVersion, history *entity.OrderHistory) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CreateAttachment", trace.WithAttributes(
		attribute.String("order.id", att.OrderID),
		attribute.String("attachment.label", att.Label),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(att).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(v1).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(history).Exec(ctx)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLabel
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return classify(err)
	}
	return nil
}

// AddVersion appends a new current version. The flip of every existing
// version to non-current and the insert of the new current one are a single
// transaction, so readers never observe zero or two current versions.
func (r *Repository) AddVersion(ctx context.Context, version *entity.AttachmentVersion, history *entity.OrderHistory) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.AddVersion", trace.WithAttributes(
		attribute.String("attachment.id", version.AttachmentID),
		attribute.Int("attachment.version", version.VersionNumber),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*entity.AttachmentVersion)(nil)).
			Set("is_current = FALSE").
			Where("attachment_id = ?", version.AttachmentID).
			Where("is_current = TRUE").
			Exec(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
			return err
		}
		_, err = tx.NewInsert().Model(history).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "version flip failed")
		return classify(err)
	}
	return nil
}

// ArchiveAttachment marks the attachment archived and appends the history
// entry; versions and their currency are untouched.
func (r *Repository) ArchiveAttachment(ctx context.Context, attachmentID string, history *entity.OrderHistory) error {
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*entity.Attachment)(nil)).
			Set("is_archived = TRUE").
			Where("id = ?", attachmentID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAttachmentNotFound
		}
		_, err = tx.NewInsert().Model(history).Exec(ctx)
		return err
	})
	return classify(err)
}

// classify maps driver-level contention failures onto ErrContention so the
// service layer can tell apart the one retryable error class.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case "40001", "40P01": // serialization failure, deadlock
			return fmt.Errorf("%w: %v", ErrContention, err)
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1213, 1205: // deadlock, lock wait timeout
			return fmt.Errorf("%w: %v", ErrContention, err)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == "23505" {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
