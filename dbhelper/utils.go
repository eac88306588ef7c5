package dbhelper

import (
	"fmt"
	"os"
	"testing"

	"wardrobeapi/config"
	"wardrobeapi/logging"
	"wardrobeapi/models"

	"gorm.io/gorm"
)

func SetupCleaner(db *gorm.DB) func() {
	return func() {
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.FavoriteOutfit{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Clothing{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserPushToken{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserAccount{})
	}
}

func Migrate(db *gorm.DB, model interface{}) {
	if err := db.AutoMigrate(model); err != nil {
		logging.Error().Err(err).Str("model", fmt.Sprintf("%T", model)).Msg("migration failed")
		panic(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SetupTestDB connects to the local test database, skipping the test when it
// is not reachable.
func SetupTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := config.DBConfig{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envOr("DB_PORT", "5432"),
		Username: envOr("DB_USERNAME", "wardrobe"),
		Password: envOr("DB_PASSWORD", "wardrobe"),
		Name:     envOr("DB_NAME", "wardrobe_test"),
		SSLMode:  "disable",
	}
	db, err := Open(cfg)
	if err == nil {
		var sqlErr error
		if sqlDB, e := db.DB(); e == nil {
			sqlErr = sqlDB.Ping()
		} else {
			sqlErr = e
		}
		err = sqlErr
	}
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	for _, m := range []interface{}{&models.UserAccount{}, &models.UserPushToken{}, &models.Clothing{}, &models.FavoriteOutfit{}} {
		Migrate(db, m)
	}
	return db
}
