package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:moodsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection: shared-cache tables lock across connections.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// 2024-03-10 09:00 in a fixed +05:30 zone.
func newFakeClock() *clock.Fake {
	loc := time.FixedZone("IST", 5*3600+1800)
	return clock.NewFake(time.Date(2024, 3, 10, 9, 0, 0, 0, loc))
}

func newMeter(db *gorm.DB, clk clock.Clock) *UsageMeter {
	return &UsageMeter{Store: repo.UsageTable{DB: db}, Clock: clk, Log: zerolog.Nop()}
}

type countingPublisher struct{ n int32 }

func (p *countingPublisher) Publish(context.Context) error {
	atomic.AddInt32(&p.n, 1)
	return nil
}

func (p *countingPublisher) count() int { return int(atomic.LoadInt32(&p.n)) }
