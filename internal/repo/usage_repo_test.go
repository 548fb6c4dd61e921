package repo

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

func TestUsageTable_IncrementCreatesThenAccumulates(t *testing.T) {
	db := newTestDB(t, &domain.UsageStats{})
	store := UsageTable{DB: db}
	ctx := context.Background()

	if _, err := store.Get(ctx, "2024-05-01"); err != ErrNotFound {
		t.Fatalf("Get before first write = %v; want ErrNotFound", err)
	}

	row, err := store.Increment(ctx, "2024-05-01", 3, 0)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if row.DailyReads != 3 || row.DailyWrites != 0 || row.WarningThreshold != 0.8 || row.CriticalThreshold != 0.95 {
		t.Fatalf("first row = %+v", row)
	}
	row, err = store.Increment(ctx, "2024-05-01", 2, 5)
	if err != nil || row.DailyReads != 5 || row.DailyWrites != 5 {
		t.Fatalf("second row = (%+v, %v)", row, err)
	}

	other, err := store.Increment(ctx, "2024-05-02", 1, 1)
	if err != nil || other.DailyReads != 1 {
		t.Fatalf("new day must start a new record: (%+v, %v)", other, err)
	}
}

func TestRedisUsageStore_IncrementAndGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisUsageStore(client, "", 0.8, 0.95)
	ctx := context.Background()

	if _, err := store.Get(ctx, "2024-05-01"); err != ErrNotFound {
		t.Fatalf("Get before write = %v; want ErrNotFound", err)
	}
	if _, err := store.Increment(ctx, "2024-05-01", 10, 1); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	row, err := store.Increment(ctx, "2024-05-01", 5, 2)
	if err != nil || row.DailyReads != 15 || row.DailyWrites != 3 {
		t.Fatalf("Increment = (%+v, %v)", row, err)
	}
	got, err := store.Get(ctx, "2024-05-01")
	if err != nil || got.DailyReads != 15 || got.DailyWrites != 3 || got.CriticalThreshold != 0.95 {
		t.Fatalf("Get = (%+v, %v)", got, err)
	}
	if ttl := mr.TTL("mood:usage:2024-05-01"); ttl != usageKeyTTL {
		t.Fatalf("ttl = %v; want %v", ttl, usageKeyTTL)
	}
}

func TestRedisUsageStore_ErrorWhenServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	store := NewRedisUsageStore(client, "x:", 0.8, 0.95)
	if _, err := store.Increment(context.Background(), "2024-05-01", 1, 0); err == nil {
		t.Fatalf("expected error with redis down")
	}
}
