package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stickspnw/sticks-work-center/internal/config"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	userrepo "github.com/stickspnw/sticks-work-center/internal/repository/user"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

// Users is the persistence surface the service needs.
type Users interface {
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// Principal is the authenticated caller attached to each request.
type Principal struct {
	UserID   string
	Username string
	Name     string
	Role     entity.Role
}

// Admin reports whether the principal holds the admin role.
func (p Principal) Admin() bool { return p.Role == entity.RoleAdmin }

// CanWrite reports whether the principal may mutate application data.
func (p Principal) CanWrite() bool { return p.Role != entity.RoleReadOnly }

// Service issues and verifies bearer tokens.
type Service struct {
	users  Users
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Users  *userrepo.Repository
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		users:  p.Users,
		secret: []byte(p.Config.Auth.JWTSecret),
		ttl:    p.Config.Auth.TokenTTL,
		logger: p.Logger,
	}
}

type claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies username/password and issues a signed token. Disabled
// accounts and bad credentials get the same response so usernames cannot be
// probed.
func (s *Service) Login(ctx context.Context, username, password string) (string, *entity.User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" || password == "" {
		return "", nil, errorbank.BadRequest("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", nil, errorbank.Unauthorized("invalid credentials")
		}
		return "", nil, errorbank.Internal("login failed", errorbank.WithCause(err))
	}
	if user.Status != entity.UserStatusActive {
		return "", nil, errorbank.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errorbank.Unauthorized("invalid credentials")
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, errorbank.Internal("failed to sign token", errorbank.WithCause(err))
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("last login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}
	return token, user, nil
}

func (s *Service) issue(user *entity.User) (string, error) {
	now := time.Now().UTC()
	c := claims{
		Username: user.Username,
		Name:     user.Name,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify validates a bearer token and returns the principal it names. Role
// comes from the token, so role changes apply on the next login.
func (s *Service) Verify(tokenString string) (Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, errorbank.Unauthorized("invalid or expired token")
	}
	role := entity.Role(c.Role)
	if c.Subject == "" || !role.Valid() {
		return Principal{}, errorbank.Unauthorized("invalid or expired token")
	}
	return Principal{
		UserID:   c.Subject,
		Username: c.Username,
		Name:     c.Name,
		Role:     role,
	}, nil
}

// Me resolves the current account for the /auth/me endpoint. A disabled
// account invalidates the session even if the token has not expired.
func (s *Service) Me(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, errorbank.Unauthorized("account no longer exists")
		}
		return nil, errorbank.Internal("failed to load account", errorbank.WithCause(err))
	}
	if user.Status != entity.UserStatusActive {
		return nil, errorbank.Unauthorized("account is disabled")
	}
	return user, nil
}
