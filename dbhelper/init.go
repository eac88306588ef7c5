package dbhelper

import (
	"fmt"
	"time"

	"wardrobeapi/config"
	"wardrobeapi/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Minute * 5)
	return db, nil
}

// SetupDB opens the database and migrates every model. It panics on failure
// since neither binary can run without it.
func SetupDB(cfg config.DBConfig) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	Migrate(db, &models.UserAccount{})
	Migrate(db, &models.UserPushToken{})
	Migrate(db, &models.Clothing{})
	Migrate(db, &models.FavoriteOutfit{})
	return db
}
