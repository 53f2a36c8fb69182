package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"planillas/internal/model"
)

// NewConnection opens the user directory database. The directory schema is owned by the hosted
// database; autoMigrate is meant for local development only.
func NewConnection(dsn string, autoMigrate bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			log.Warn("failed to auto-migrate models", zap.Error(err))
		}
	}
	return db, nil
}

// Migrate creates or updates the tables this service reads.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{})
}
