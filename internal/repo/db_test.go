package repo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "nope", "mood.db")
	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("OpenSQLite(%q) = (%v, %v); want error", bad, db, err)
	}
	if !os.IsNotExist(err) {
		t.Fatalf("want a not-exist error, got %v", err)
	}
}

func TestOpenSQLite_PragmasPoolAndSchema(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "mood.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = CloseDB(db) })

	var journal string
	if err := db.Raw("PRAGMA journal_mode").Row().Scan(&journal); err != nil || strings.ToLower(journal) != "wal" {
		t.Fatalf("journal_mode = %q (%v); want wal", journal, err)
	}
	for pragma, want := range map[string]int{"synchronous": 1, "foreign_keys": 1, "busy_timeout": 5000} {
		var got int
		if err := db.Raw("PRAGMA " + pragma).Row().Scan(&got); err != nil || got != want {
			t.Fatalf("PRAGMA %s = %d (%v); want %d", pragma, got, err, want)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != maxOpenConns {
		t.Fatalf("MaxOpenConnections = %d; want %d", got, maxOpenConns)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, tbl := range []any{&domain.Post{}, &domain.User{}, &domain.DailyStats{}, &domain.UsageStats{}, &domain.Idempotency{}} {
		if !db.Migrator().HasTable(tbl) {
			t.Fatalf("missing table for %T", tbl)
		}
	}

	now := time.Now().UTC()
	p := &domain.Post{AuthorID: "u1", Mood: "chill_panren", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := CreatePost(context.Background(), db, p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	got, err := GetPost(context.Background(), db, p.ID)
	if err != nil || got.AuthorID != "u1" {
		t.Fatalf("GetPost = (%+v, %v)", got, err)
	}
}

func TestCloseDB_StopsQueries(t *testing.T) {
	db := newTestDB(t, &domain.Post{})
	if err := CloseDB(db); err != nil {
		t.Fatalf("CloseDB: %v", err)
	}
	if _, err := GetPost(context.Background(), db, "x"); err == nil || err == ErrNotFound {
		t.Fatalf("query after close err = %v; want a connection error", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	if err := db.Create(&domain.User{ID: "u1", IsActive: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := db.Create(&domain.User{ID: "u1", IsActive: true}).Error
	if !isUniqueViolation(err) {
		t.Fatalf("isUniqueViolation(%v) = false", err)
	}
	if isUniqueViolation(nil) {
		t.Fatalf("nil is not a violation")
	}
}
