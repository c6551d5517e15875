package setting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/cache"
	"github.com/stickspnw/sticks-work-center/internal/config"
	"github.com/stickspnw/sticks-work-center/internal/entity"
	settingrepo "github.com/stickspnw/sticks-work-center/internal/repository/setting"
	auditsvc "github.com/stickspnw/sticks-work-center/internal/service/audit"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

// Store is the persistence surface the service needs.
type Store interface {
	All(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
}

// Branding is the shaped view of the branding settings.
type Branding struct {
	BrandName   string `json:"brandName"`
	CompanyName string `json:"companyName"`
	HasLogo     bool   `json:"hasLogo"`
}

// Service owns application settings and branding assets.
type Service struct {
	store    Store
	cache    cache.Store
	cacheTTL config.Cache
	audit    *auditsvc.Service
	cfg      config.Branding
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Settings *settingrepo.Repository
	Cache    cache.Store
	Audit    *auditsvc.Service
	Config   config.Config
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:    p.Settings,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache,
		audit:    p.Audit,
		cfg:      p.Config.Branding,
		logger:   p.Logger,
	}
}

// All returns the raw settings map.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	values, err := s.store.All(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to load settings", errorbank.WithCause(err))
	}
	return values, nil
}

const brandingCacheKey = "settings:branding"

// GetBranding returns the branding view, cached until the next write.
func (s *Service) GetBranding(ctx context.Context) (Branding, error) {
	if s.cache != nil {
		if bytes, err := s.cache.Get(ctx, brandingCacheKey); err == nil {
			var b Branding
			if err := json.Unmarshal(bytes, &b); err == nil {
				return b, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("branding cache read failed", zap.Error(err))
		}
	}

	values, err := s.store.Get(ctx, entity.SettingBrandName, entity.SettingCompanyName, entity.SettingLogoPath)
	if err != nil {
		return Branding{}, errorbank.Internal("failed to load branding", errorbank.WithCause(err))
	}
	b := Branding{
		BrandName:   values[entity.SettingBrandName],
		CompanyName: values[entity.SettingCompanyName],
		HasLogo:     values[entity.SettingLogoPath] != "",
	}

	if s.cache != nil {
		if bytes, err := json.Marshal(b); err == nil {
			if err := s.cache.Set(ctx, brandingCacheKey, bytes, s.cacheTTL.DefaultTTL); err != nil {
				s.logger.Warn("branding cache write failed", zap.Error(err))
			}
		}
	}
	return b, nil
}

// SetCompanyName upserts the company name shown on printable documents.
func (s *Service) SetCompanyName(ctx context.Context, name, actorID string) (Branding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Branding{}, errorbank.BadRequest("companyName is required")
	}
	if err := s.store.Upsert(ctx, entity.SettingCompanyName, name); err != nil {
		return Branding{}, errorbank.Internal("failed to save company name", errorbank.WithCause(err))
	}
	s.invalidate(ctx)

	if s.audit != nil {
		s.audit.Record(ctx, auditsvc.Entry{
			ActorID: actorID,
			Action:  entity.AuditBrandingChanged,
			Details: map[string]any{"field": "companyName", "value": name},
		})
	}
	return s.GetBranding(ctx)
}

var logoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// SaveLogo stores an uploaded logo under the configured directory as
// logo.<ext> and upserts the logo_path setting. The previous logo file, if
// any, is overwritten or left orphaned; only the stored path is served.
func (s *Service) SaveLogo(ctx context.Context, filename string, size int64, content io.Reader, actorID string) (Branding, error) {
	if size <= 0 {
		return Branding{}, errorbank.BadRequest("logo file is empty")
	}
	if size > s.cfg.MaxLogoBytes {
		return Branding{}, errorbank.BadRequest(
			fmt.Sprintf("logo must be at most %d bytes", s.cfg.MaxLogoBytes),
		)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !logoExtensions[ext] {
		return Branding{}, errorbank.BadRequest("unsupported logo format", errorbank.WithDetail("extension", ext))
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return Branding{}, errorbank.Internal("failed to prepare upload directory", errorbank.WithCause(err))
	}
	path := filepath.Join(s.cfg.UploadDir, "logo"+ext)
	dst, err := os.Create(path)
	if err != nil {
		return Branding{}, errorbank.Internal("failed to store logo", errorbank.WithCause(err))
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(content, s.cfg.MaxLogoBytes)); err != nil {
		return Branding{}, errorbank.Internal("failed to store logo", errorbank.WithCause(err))
	}

	if err := s.store.Upsert(ctx, entity.SettingLogoPath, path); err != nil {
		return Branding{}, errorbank.Internal("failed to save logo path", errorbank.WithCause(err))
	}
	s.invalidate(ctx)

	if s.audit != nil {
		s.audit.Record(ctx, auditsvc.Entry{
			ActorID: actorID,
			Action:  entity.AuditBrandingChanged,
			Details: map[string]any{"field": "logo", "path": path},
		})
	}
	return s.GetBranding(ctx)
}

// LogoPath returns the stored logo file path, or "" when no logo was
// uploaded.
func (s *Service) LogoPath(ctx context.Context) (string, error) {
	values, err := s.store.Get(ctx, entity.SettingLogoPath)
	if err != nil {
		return "", errorbank.Internal("failed to load logo path", errorbank.WithCause(err))
	}
	return values[entity.SettingLogoPath], nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, brandingCacheKey); err != nil {
		s.logger.Warn("branding cache invalidation failed", zap.Error(err))
	}
}
