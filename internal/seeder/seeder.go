package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stickspnw/sticks-work-center/internal/config"
	"github.com/stickspnw/sticks-work-center/internal/database"
	"github.com/stickspnw/sticks-work-center/internal/entity"
)

// Seeder performs database seeding for local/dev setups. Every step is
// idempotent: rerunning the seed never duplicates rows.
type Seeder struct {
	db         *bun.DB
	bcryptCost int
	logger     *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, cfg config.Config, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, bcryptCost: cfg.Auth.BcryptCost, logger: logger}
}

// Module provides the Seeder to Fx.
var Module = fx.Provide(New)

// Run seeds the sequence row, branding, accounts and a starter catalog.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.sequence(ctx); err != nil {
		return err
	}
	if err := s.branding(ctx); err != nil {
		return err
	}
	if err := s.users(ctx); err != nil {
		return err
	}
	return s.products(ctx)
}

func (s *Seeder) sequence(ctx context.Context) error {
	seq := entity.OrderSequence{ID: 1, Current: 0}
	_, err := s.db.NewInsert().Model(&seq).
		Ignore().
		Exec(ctx)
	return err
}

func (s *Seeder) branding(ctx context.Context) error {
	setting := entity.Setting{Key: entity.SettingBrandName, Value: "Sticks Work Center"}
	_, err := s.db.NewInsert().Model(&setting).
		Ignore().
		Exec(ctx)
	return err
}

func (s *Seeder) users(ctx context.Context) error {
	samples := []struct {
		username string
		password string
		name     string
		role     entity.Role
	}{
		{"jordan.admin", "jordan", "Jordan", entity.RoleAdmin},
		{"kaden.standard", "kaden", "Kaden", entity.RoleStandard},
	}

	now := time.Now().UTC()
	for _, sample := range samples {
		hash, err := bcrypt.GenerateFromPassword([]byte(sample.password), s.bcryptCost)
		if err != nil {
			return err
		}
		user := entity.User{
			ID:           uuid.NewString(),
			Username:     sample.username,
			PasswordHash: string(hash),
			Name:         sample.name,
			DisplayName:  sample.name,
			Role:         sample.role,
			Status:       entity.UserStatusActive,
			CreatedAt:    now,
		}
		_, err = s.db.NewInsert().Model(&user).
			Ignore().
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded users", zap.Int("count", len(samples)))
	}
	return nil
}

func (s *Seeder) products(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Product{
		{Name: "Walking Stick - Oak", Price: 45.00},
		{Name: "Walking Stick - Cherry", Price: 55.00},
		{Name: "Hiking Staff - Hickory", Price: 65.00},
		{Name: "Custom Engraving", Price: 15.00},
	}

	for _, sample := range samples {
		product := sample
		product.ID = uuid.NewString()
		product.Status = entity.ProductStatusActive
		product.CreatedAt = now
		product.UpdatedAt = now
		_, err := s.db.NewInsert().Model(&product).
			Ignore().
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded products", zap.Int("count", len(samples)))
	}
	return nil
}
