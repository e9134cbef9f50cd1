package database

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm/logger"

	"talkie/server/models"
)

func TestWithForeignKeys(t *testing.T) {
	cases := map[string]string{
		"talkie.db":                   "talkie.db?_foreign_keys=on",
		"file:talkie.db?cache=shared": "file:talkie.db?cache=shared&_foreign_keys=on",
		"talkie.db?_foreign_keys=off": "talkie.db?_foreign_keys=off",
	}
	for in, want := range cases {
		if got := withForeignKeys(in); got != want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenMigrateEnforcesForeignKeys(t *testing.T) {
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "nested", "t.db"), logger.Silent)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(db)

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, m := range models.All() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("missing table for %T", m)
		}
	}

	orphan := models.Message{ConversationID: 4242, Sender: models.SenderUser, Text: "hi"}
	if err := db.Create(&orphan).Error; err == nil {
		t.Fatalf("message without conversation must be rejected")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x", logger.Silent); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
