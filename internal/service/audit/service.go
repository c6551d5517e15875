package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	auditrepo "github.com/stickspnw/sticks-work-center/internal/repository/audit"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

// Store is the persistence surface the service needs.
type Store interface {
	Append(ctx context.Context, entry *entity.AuditLog) error
	Recent(ctx context.Context, take int) ([]*entity.AuditLog, error)
}

// Service records and serves the administrative audit trail.
type Service struct {
	store  Store
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Audit  *auditrepo.Repository
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{store: p.Audit, logger: p.Logger}
}

// Entry describes one auditable action.
type Entry struct {
	ActorID      string
	TargetUserID string
	Initials     string
	Action       string
	Details      map[string]any
}

// Record appends an audit entry. Failures are logged and swallowed: audit
// writes never fail the action that triggered them.
func (s *Service) Record(ctx context.Context, e Entry) {
	entry := &entity.AuditLog{
		ID:           uuid.NewString(),
		Action:       e.Action,
		Initials:     e.Initials,
		ActorUserID:  e.ActorID,
		TargetUserID: e.TargetUserID,
		Details:      e.Details,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		if s.logger != nil {
			s.logger.Warn("audit append failed",
				zap.String("action", e.Action),
				zap.String("actor_user_id", e.ActorID),
				zap.Error(err),
			)
		}
	}
}

// Recent returns the newest audit entries with actors resolved.
func (s *Service) Recent(ctx context.Context, take int) ([]*entity.AuditLog, error) {
	if take <= 0 || take > 200 {
		take = 50
	}
	entries, err := s.store.Recent(ctx, take)
	if err != nil {
		return nil, errorbank.Internal("failed to load audit log", errorbank.WithCause(err))
	}
	return entries, nil
}
