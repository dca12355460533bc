package db

import (
	"errors"
	"krishna_store/internal/domain" // Importing domain models
	"krishna_store/internal/utils"  // Slug generation

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM logger
)

// Open connects to MySQL. Driver errors are translated so duplicate keys
// surface as gorm.ErrDuplicatedKey.
func Open(dsn string, isProd bool) (*gorm.DB, error) {
	logLevel := logger.Info // Verbose SQL logging outside production
	if isProd {
		logLevel = logger.Warn
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
}

// Migrate creates or updates every table the service owns
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.ShopInfo{}, &domain.Order{}, &domain.OTP{}, &domain.Product{}); err != nil {
		return err
	}
	logrus.Info("Migration completed.")
	return nil
}

// SeedAdmin creates the owner account if no user holds the phone yet.
// Admins cannot be provisioned through the API, so this is the bootstrap path.
func SeedAdmin(db *gorm.DB, name, phone string) (*domain.User, error) {
	var existing domain.User
	err := db.Where("phone = ?", phone).First(&existing).Error
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			// Promotion is an explicit administrative action, never implicit
			return nil, domain.ConflictError("Phone is registered to a non-admin account", domain.ErrPhoneTaken)
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var slugs []string
	if err := db.Model(&domain.User{}).Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	admin := domain.User{
		Name:                name,
		Phone:               phone,
		Role:                domain.RoleAdmin,
		Slug:                utils.GenerateSlug(name, slugs),
		IsVerified:          true,
		IsActive:            true,
		AdditionalAddresses: []string{},
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": admin.ID, "phone": admin.Phone}).Info("Admin account seeded")
	return &admin, nil
}
