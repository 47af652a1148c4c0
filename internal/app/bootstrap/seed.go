package bootstrap

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
	userstore "github.com/gsdta/schoolapi/internal/app/store/users"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
)

// SeedAdmin creates the bootstrap super admin when configured and missing.
// An existing account with the seed email is left untouched.
func SeedAdmin(ctx context.Context, cfg *Config, deps *Deps, logger *zap.Logger) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	store := userstore.New(deps.MongoDatabase)
	if _, err := store.ByEmail(ctx, cfg.SeedAdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u := &userstore.User{
		UID:          uuid.NewString(),
		Email:        cfg.SeedAdminEmail,
		PasswordHash: string(hash),
		Name:         cfg.SeedAdminName,
		Roles:        []string{auth.RoleSuperAdmin, auth.RoleAdmin},
		Status:       "active",
	}
	if err := store.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	logger.Info("seed admin created", zap.String("email", cfg.SeedAdminEmail))
	return nil
}
