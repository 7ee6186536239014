package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tbourn/go-shopify-slack-notifier/internal/domain"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifier.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite(%q): %v", path, err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	if !db.Migrator().HasTable(&domain.ThreadMapping{}) {
		t.Fatal("thread_mappings table missing after migration")
	}

	// Round-trip through the mapping repo against the migrated schema.
	ctx := context.Background()
	m := &domain.ThreadMapping{OrderKey: "1278", RootID: "100.1", Channel: "C01"}
	if err := SaveMapping(ctx, db, m); err != nil {
		t.Fatalf("SaveMapping: %v", err)
	}
	got, err := GetMapping(ctx, db, "1278")
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if got == nil || got.RootID != "100.1" || got.Channel != "C01" {
		t.Fatalf("GetMapping = %+v", got)
	}
}

func TestOpenSQLiteMissingParentDir(t *testing.T) {
	if _, err := OpenSQLite("/definitely/not/a/dir/x.db"); err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}
