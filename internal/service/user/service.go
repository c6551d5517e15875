package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stickspnw/sticks-work-center/internal/config"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	userrepo "github.com/stickspnw/sticks-work-center/internal/repository/user"
	auditsvc "github.com/stickspnw/sticks-work-center/internal/service/audit"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
	"github.com/stickspnw/sticks-work-center/pkg/initials"
)

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context) ([]*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	SetStatus(ctx context.Context, id string, status entity.UserStatus) error
	SetRole(ctx context.Context, id string, role entity.Role) error
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// Service owns account administration. Every operation here is admin-only;
// the transport layer enforces that before calling in.
type Service struct {
	store      Store
	audit      *auditsvc.Service
	bcryptCost int
	logger     *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Users  *userrepo.Repository
	Audit  *auditsvc.Service
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:      p.Users,
		audit:      p.Audit,
		bcryptCost: p.Config.Auth.BcryptCost,
		logger:     p.Logger,
	}
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	Username    string
	Password    string
	Name        string
	DisplayName string
	Role        entity.Role
}

// List returns all accounts, disabled included.
func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to list users", errorbank.WithCause(err))
	}
	return users, nil
}

// Create adds an account with an ACTIVE status and a bcrypt password hash.
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*entity.User, error) {
	in.Username = strings.TrimSpace(strings.ToLower(in.Username))
	in.Name = strings.TrimSpace(in.Name)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if len(in.Username) < 3 {
		return nil, errorbank.BadRequest("username must be at least 3 characters")
	}
	if len(in.Password) < 4 {
		return nil, errorbank.BadRequest("password must be at least 4 characters")
	}
	if in.Name == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	if !in.Role.Valid() {
		return nil, errorbank.BadRequest("unknown role", errorbank.WithDetail("role", string(in.Role)))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: string(hash),
		Name:         in.Name,
		DisplayName:  in.DisplayName,
		Role:         in.Role,
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrUsernameTaken) {
			return nil, errorbank.Conflict("username already exists", errorbank.WithDetail("username", in.Username))
		}
		return nil, errorbank.Internal("failed to create user", errorbank.WithCause(err))
	}

	s.record(ctx, auditsvc.Entry{
		ActorID:      actorID,
		TargetUserID: u.ID,
		Action:       entity.AuditUserCreated,
		Details:      map[string]any{"username": u.Username, "role": string(u.Role)},
	})
	return u, nil
}

// SetStatus enables or disables an account. Admins cannot disable
// themselves.
func (s *Service) SetStatus(ctx context.Context, id string, status entity.UserStatus, rawInitials, actorID string) (*entity.User, error) {
	code, ok := initials.Normalize(rawInitials)
	if !ok {
		return nil, errorbank.BadRequest("initials must be 2-3 letters")
	}
	if status != entity.UserStatusActive && status != entity.UserStatusDisabled {
		return nil, errorbank.BadRequest("unknown status", errorbank.WithDetail("status", string(status)))
	}
	if id == actorID && status == entity.UserStatusDisabled {
		return nil, errorbank.Conflict("you cannot disable your own account")
	}

	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetStatus(ctx, id, status); err != nil {
		return nil, errorbank.Internal("failed to update status", errorbank.WithCause(err))
	}
	u.Status = status

	s.record(ctx, auditsvc.Entry{
		ActorID:      actorID,
		TargetUserID: id,
		Initials:     code,
		Action:       entity.AuditUserStatusChanged,
		Details:      map[string]any{"username": u.Username, "status": string(status)},
	})
	return u, nil
}

// SetRole changes an account's role. Admins cannot change their own role, so
// the system can never lose its last admin by self-demotion.
func (s *Service) SetRole(ctx context.Context, id string, role entity.Role, rawInitials, actorID string) (*entity.User, error) {
	code, ok := initials.Normalize(rawInitials)
	if !ok {
		return nil, errorbank.BadRequest("initials must be 2-3 letters")
	}
	if !role.Valid() {
		return nil, errorbank.BadRequest("unknown role", errorbank.WithDetail("role", string(role)))
	}
	if id == actorID {
		return nil, errorbank.Conflict("you cannot change your own role")
	}

	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetRole(ctx, id, role); err != nil {
		return nil, errorbank.Internal("failed to update role", errorbank.WithCause(err))
	}
	u.Role = role

	s.record(ctx, auditsvc.Entry{
		ActorID:      actorID,
		TargetUserID: id,
		Initials:     code,
		Action:       entity.AuditUserRoleChanged,
		Details:      map[string]any{"username": u.Username, "role": string(role)},
	})
	return u, nil
}

// ResetPassword replaces an account's password hash.
func (s *Service) ResetPassword(ctx context.Context, id, password, actorID string) error {
	if len(password) < 4 {
		return errorbank.BadRequest("password must be at least 4 characters")
	}
	u, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}
	if err := s.store.SetPasswordHash(ctx, id, string(hash)); err != nil {
		return errorbank.Internal("failed to reset password", errorbank.WithCause(err))
	}

	s.record(ctx, auditsvc.Entry{
		ActorID:      actorID,
		TargetUserID: id,
		Action:       entity.AuditUserPasswordReset,
		Details:      map[string]any{"username": u.Username},
	})
	return nil
}

// Delete is logical only: the account is disabled and its sessions stop
// verifying on the next /auth/me check. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, id, rawInitials, actorID string) error {
	code, ok := initials.Normalize(rawInitials)
	if !ok {
		return errorbank.BadRequest("initials must be 2-3 letters")
	}
	if id == actorID {
		return errorbank.Conflict("you cannot delete your own account")
	}

	u, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.SetStatus(ctx, id, entity.UserStatusDisabled); err != nil {
		return errorbank.Internal("failed to delete user", errorbank.WithCause(err))
	}

	s.record(ctx, auditsvc.Entry{
		ActorID:      actorID,
		TargetUserID: id,
		Initials:     code,
		Action:       entity.AuditUserDeleted,
		Details:      map[string]any{"username": u.Username},
	})
	return nil
}

func (s *Service) record(ctx context.Context, e auditsvc.Entry) {
	if s.audit != nil {
		s.audit.Record(ctx, e)
	}
}

func (s *Service) get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, errorbank.NotFound("user not found")
		}
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	return u, nil
}
