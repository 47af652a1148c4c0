// Package flags manages the per-role feature toggles super admins edit.
//
// The config lives in one document in the systemConfig collection and is
// cached in-process with a short TTL. Unknown roles and features default to
// enabled, matching the default-enabled posture of the flag catalog.
package flags

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gsdta/schoolapi/internal/app/system/auth"
)

// Flag is one toggle.
type Flag struct {
	Enabled bool `bson:"enabled" json:"enabled"`
}

// Config is the full role -> feature -> flag map.
type Config struct {
	Roles     map[string]map[string]Flag `bson:"roles" json:"roles"`
	UpdatedAt time.Time                  `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy string                     `bson:"updatedBy" json:"updatedBy"`
}

// Catalog enumerates every known feature per role, all enabled by default.
var Catalog = map[string][]string{
	auth.RoleAdmin: {
		"Students", "Teachers", "Classes", "Grades", "Textbooks", "Volunteers",
		"AttendanceAnalytics", "HeroContent", "FlashNews", "NewsPosts", "Calendar",
	},
	auth.RoleTeacher: {"Classes", "Attendance", "Messaging", "NewsPosts"},
	auth.RoleParent:  {"Students", "StudentRegistration", "Messaging", "Profile", "Settings"},
}

// DefaultConfig returns the catalog with every feature enabled.
func DefaultConfig() *Config {
	roles := make(map[string]map[string]Flag, len(Catalog))
	for role, features := range Catalog {
		m := make(map[string]Flag, len(features))
		for _, f := range features {
			m[f] = Flag{Enabled: true}
		}
		roles[role] = m
	}
	return &Config{Roles: roles, UpdatedBy: "system", UpdatedAt: time.Now().UTC()}
}

// Store persists the flag config. Implemented by the mongo store below and
// by test fakes.
type Store interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, role string, updates map[string]Flag, updatedBy string) error
}

// Service answers feature checks with a cached copy of the config.
type Service struct {
	store  Store
	logger *zap.Logger
	ttl    time.Duration

	mu        sync.Mutex
	cached    *Config
	fetchedAt time.Time
}

// NewService creates a Service. ttl controls how long a loaded config is
// reused; the original used five minutes.
func NewService(store Store, logger *zap.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{store: store, logger: logger, ttl: ttl}
}

// Get returns the current config, from cache when fresh. A load failure
// falls back to the default config so flag-store outages never take down
// gated routes.
func (s *Service) Get(ctx context.Context) *Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.ttl {
		return s.cached
	}
	cfg, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("feature flag load failed, using defaults", zap.Error(err))
		return DefaultConfig()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s.cached = cfg
	s.fetchedAt = time.Now()
	return cfg
}

// Update saves flag changes for one role and invalidates the cache.
func (s *Service) Update(ctx context.Context, role string, updates map[string]Flag, updatedBy string) (*Config, error) {
	if err := s.store.Save(ctx, role, updates, updatedBy); err != nil {
		return nil, err
	}
	s.Invalidate()
	return s.Get(ctx), nil
}

// Invalidate drops the cached config.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Enabled reports whether the feature is enabled for the role. Unknown
// roles and features are enabled (fail-open).
func (s *Service) Enabled(ctx context.Context, role, feature string) bool {
	cfg := s.Get(ctx)
	roleFlags, ok := cfg.Roles[role]
	if !ok {
		return true
	}
	flag, ok := roleFlags[feature]
	if !ok {
		return true
	}
	return flag.Enabled
}

// Require returns a 403 feature/disabled auth.Error when the feature is
// disabled for the role.
func (s *Service) Require(ctx context.Context, role, feature string) error {
	if s.Enabled(ctx, role, feature) {
		return nil
	}
	return auth.NewError(http.StatusForbidden, "feature/disabled",
		"The "+feature+" feature is currently disabled")
}
