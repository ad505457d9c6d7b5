package config

import (
	"context"
	"errors"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/logger"
	"microloan/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db   *gorm.DB
	cfg  SeedConfig
	hash func(string) (string, error)
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig) *Seeder {
	return &Seeder{db: db, cfg: cfg, hash: password.Hash}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdminUser(ctx); err != nil {
		logger.Warn(ctx, "admin seeder skipped", zap.Error(err))
	}
	return nil
}

// seedAdminUser creates the bootstrap admin, or promotes the existing
// account with that email. Without ADMIN_EMAIL it does nothing.
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", s.cfg.AdminEmail).First(&user).Error
	switch {
	case err == nil:
		if user.Role == string(domain.RoleAdmin) {
			return nil
		}
		user.Role = string(domain.RoleAdmin)
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			return err
		}
		logger.Info(ctx, "promoted existing user to admin", zap.String("email", user.Email))
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if !password.ValidatePassword(s.cfg.AdminPassword) {
		return errors.New("ADMIN_PASSWORD missing or too short")
	}

	hashed, err := s.hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:       s.cfg.AdminEmail,
		Password:    hashed,
		Role:        string(domain.RoleAdmin),
		DisplayName: "Administrator",
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}

	logger.Info(ctx, "admin user created", zap.String("email", admin.Email))
	return nil
}
