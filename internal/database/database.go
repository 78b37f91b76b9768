package database

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/config"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if cfg.Driver == "sqlite" {
		// every :memory: connection is its own database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "sqlite handle")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	zap.L().Info("database connection successful", zap.String("driver", cfg.Driver))
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.Tables...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return nil
}

// SeedAdmin creates the configured administrator when no user holds that email.
func SeedAdmin(ctx context.Context, db *gorm.DB, gen *ids.Generator, admin config.AdminConfig) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		zap.L().Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(err, "query admin")
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	customID, err := gen.Reserve(ctx, ids.PrefixUser, func(ctx context.Context, id string) (bool, error) {
		var n int64
		err := db.WithContext(ctx).Model(&models.User{}).Where("custom_id = ?", id).Count(&n).Error
		return n > 0, err
	})
	if err != nil {
		return err
	}

	user := models.User{
		ID:           gen.NextID(),
		CustomID:     customID,
		Name:         admin.Name,
		Email:        email,
		Role:         models.RoleAdmin,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return errors.Wrap(err, "create admin")
	}
	zap.L().Info("initialized administrator account", zap.String("email", email))
	return nil
}
