package database

import (
	"context"
	"errors"
	"strings"

	"github.com/ordermill/storefront/internal/common/config"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EnsureSuperAdmin seeds the configured super admin account on startup.
// The account gets the admin role; an existing account is left untouched.
func EnsureSuperAdmin(ctx context.Context, logger *zap.Logger, db Database, cfg *config.SuperAdminConfig) error {
	if cfg == nil || cfg.Email == "" || cfg.Password == "" {
		logger.Debug("super admin not configured, skipping seed")
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	_, err := db.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(ctx, func(ctx context.Context) error {
		user := &User{Email: email, PasswordHash: string(hash)}
		if err := db.CreateUser(ctx, user); err != nil {
			return err
		}
		if err := db.AddUserRole(ctx, user.ID, RoleAdmin); err != nil {
			return err
		}
		logger.Info("seeded super admin account", zap.String("email", email))
		return nil
	})
}
