package database

import (
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	"gorm.io/driver/sqlite"
)

func TestOpenMigratePingClose(t *testing.T) {
	db, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "reviews.db")))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !db.Migrator().HasTable(&models.Review{}) {
		t.Fatalf("reviews table missing")
	}
	if !db.Migrator().HasTable(&models.SystemLog{}) {
		t.Fatalf("system_logs table missing")
	}
	if err := Ping(db); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := Close(db); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := Ping(db); err == nil {
		t.Fatalf("ping after close should fail")
	}
}
