package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Growthfyi/squeak/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Organization{},
		&model.SqueakConfig{},
		&model.Profile{},
		&model.ProfileReadonly{},
		&model.Question{},
		&model.Reply{},
		&model.Topic{},
		&model.TopicGroup{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db
}
