package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

func TestEnsureUser_CreatesOnceAndKeepsExisting(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()
	now := time.Now().UTC()

	u, err := EnsureUser(ctx, db, &domain.User{ID: "u1", CreatedAt: now, LastActive: now, IsActive: true})
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if u.DisplayName != domain.DefaultDisplayName || !u.IsActive {
		t.Fatalf("unexpected user: %+v", u)
	}

	if err := UpdateUser(ctx, db, "u1", map[string]any{"daily_post_count": 4, "last_post_date": "2024-01-01"}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	again, err := EnsureUser(ctx, db, &domain.User{ID: "u1", DisplayName: "Other"})
	if err != nil {
		t.Fatalf("EnsureUser again: %v", err)
	}
	if again.DailyPostCount != 4 || again.DisplayName != domain.DefaultDisplayName {
		t.Fatalf("existing row was overwritten: %+v", again)
	}
}

func TestUpdateUser_PersistsZeroValuesAndMissingIsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()
	if _, err := EnsureUser(ctx, db, &domain.User{ID: "u1", IsActive: true, DailyPostCount: 3}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateUser(ctx, db, "u1", map[string]any{"daily_post_count": 0, "is_active": false}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	u, _ := GetUser(ctx, db, "u1")
	if u.DailyPostCount != 0 || u.IsActive {
		t.Fatalf("zero values not persisted: %+v", u)
	}
	if err := UpdateUser(ctx, db, "ghost", map[string]any{"is_active": true}); err != ErrNotFound {
		t.Fatalf("UpdateUser(ghost) = %v; want ErrNotFound", err)
	}
	if _, err := GetUser(ctx, db, "ghost"); err != ErrNotFound {
		t.Fatalf("GetUser(ghost) = %v; want ErrNotFound", err)
	}
}
