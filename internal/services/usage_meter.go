// Package services – UsageMeter
//
// UsageMeter counts backing-store reads and writes per calendar day and
// classifies each counter against its free-tier limit. Metering is advisory:
// callers use Observe, which logs failures and never fails the operation it
// accounts for.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/repo"
)

// Default free-tier limits and thresholds.
const (
	DefaultReadLimit         = 50000
	DefaultWriteLimit        = 20000
	DefaultWarningThreshold  = 0.80
	DefaultCriticalThreshold = 0.95
)

// Op is a metered operation kind.
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// UsageLevel classifies a counter against its limit.
type UsageLevel string

const (
	LevelNominal  UsageLevel = "nominal"
	LevelWarning  UsageLevel = "warning"
	LevelCritical UsageLevel = "critical"
)

// UsageStore persists the per-day counters. repo.UsageTable and
// repo.RedisUsageStore implement it.
type UsageStore interface {
	Increment(ctx context.Context, day string, reads, writes int64) (*domain.UsageStats, error)
	Get(ctx context.Context, day string) (*domain.UsageStats, error)
}

// UsageReport is the classified state of today's counters after a Track.
type UsageReport struct {
	Date       string     `json:"date"`
	Reads      int64      `json:"reads"`
	Writes     int64      `json:"writes"`
	ReadRatio  float64    `json:"read_ratio"`
	WriteRatio float64    `json:"write_ratio"`
	ReadLevel  UsageLevel `json:"read_level"`
	WriteLevel UsageLevel `json:"write_level"`
}

var usageRatio = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "mood_usage_ratio",
		Help: "Today's store operations as a fraction of the daily limit.",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(usageRatio)
}

// UsageMeter is safe for concurrent use. A nil *UsageMeter meters nothing.
type UsageMeter struct {
	Store      UsageStore
	Clock      clock.Clock
	ReadLimit  int64
	WriteLimit int64
	Warning    float64
	Critical   float64
	Log        zerolog.Logger
}

// Track adds count operations of kind op to today's counters and classifies
// the result.
func (m *UsageMeter) Track(ctx context.Context, op Op, count int) (*UsageReport, error) {
	switch op {
	case OpRead:
		return m.record(ctx, int64(count), 0)
	case OpWrite:
		return m.record(ctx, 0, int64(count))
	}
	return nil, fmt.Errorf("usage: unknown op %q", op)
}

// Observe records reads and writes in one round trip. Errors are logged and
// swallowed, and the caller's cancellation does not abort the update.
func (m *UsageMeter) Observe(ctx context.Context, reads, writes int) {
	if m == nil || m.Store == nil || (reads == 0 && writes == 0) {
		return
	}
	if _, err := m.record(context.WithoutCancel(ctx), int64(reads), int64(writes)); err != nil {
		m.Log.Warn().Err(err).Int("reads", reads).Int("writes", writes).Msg("usage tracking failed")
	}
}

// GetCurrentUsage returns today's counters, or nil when nothing was recorded
// yet today.
func (m *UsageMeter) GetCurrentUsage(ctx context.Context) (*domain.UsageStats, error) {
	if m == nil || m.Store == nil {
		return nil, nil
	}
	row, err := m.Store.Get(ctx, clock.Today(m.Clock))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.fillThresholds(row)
	return row, nil
}

// Report classifies a usage row against the meter's limits.
func (m *UsageMeter) Report(row *domain.UsageStats) *UsageReport {
	m.fillThresholds(row)
	rr := ratio(row.DailyReads, m.readLimit())
	wr := ratio(row.DailyWrites, m.writeLimit())
	return &UsageReport{
		Date:       row.Date,
		Reads:      row.DailyReads,
		Writes:     row.DailyWrites,
		ReadRatio:  rr,
		WriteRatio: wr,
		ReadLevel:  Classify(rr, row.WarningThreshold, row.CriticalThreshold),
		WriteLevel: Classify(wr, row.WarningThreshold, row.CriticalThreshold),
	}
}

func (m *UsageMeter) record(ctx context.Context, reads, writes int64) (*UsageReport, error) {
	if m == nil || m.Store == nil {
		return nil, nil
	}
	row, err := m.Store.Increment(ctx, clock.Today(m.Clock), reads, writes)
	if err != nil {
		return nil, fmt.Errorf("usage: increment: %w", err)
	}
	rep := m.Report(row)
	usageRatio.WithLabelValues(string(OpRead)).Set(rep.ReadRatio)
	usageRatio.WithLabelValues(string(OpWrite)).Set(rep.WriteRatio)
	if reads > 0 {
		m.alert(OpRead, rep.ReadLevel, rep.Reads, m.readLimit())
	}
	if writes > 0 {
		m.alert(OpWrite, rep.WriteLevel, rep.Writes, m.writeLimit())
	}
	return rep, nil
}

func (m *UsageMeter) alert(op Op, lvl UsageLevel, used, limit int64) {
	switch lvl {
	case LevelCritical:
		m.Log.Error().Str("op", string(op)).Int64("used", used).Int64("limit", limit).Msg("store usage critical")
	case LevelWarning:
		m.Log.Warn().Str("op", string(op)).Int64("used", used).Int64("limit", limit).Msg("store usage high")
	}
}

func (m *UsageMeter) fillThresholds(row *domain.UsageStats) {
	if row.WarningThreshold <= 0 {
		row.WarningThreshold = m.warning()
	}
	if row.CriticalThreshold <= 0 {
		row.CriticalThreshold = m.critical()
	}
}

func (m *UsageMeter) readLimit() int64 {
	if m.ReadLimit > 0 {
		return m.ReadLimit
	}
	return DefaultReadLimit
}

func (m *UsageMeter) writeLimit() int64 {
	if m.WriteLimit > 0 {
		return m.WriteLimit
	}
	return DefaultWriteLimit
}

func (m *UsageMeter) warning() float64 {
	if m.Warning > 0 {
		return m.Warning
	}
	return DefaultWarningThreshold
}

func (m *UsageMeter) critical() float64 {
	if m.Critical > 0 {
		return m.Critical
	}
	return DefaultCriticalThreshold
}

func ratio(used, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(used) / float64(limit)
}

// Classify maps a usage ratio to a level. Thresholds are inclusive.
func Classify(r, warning, critical float64) UsageLevel {
	switch {
	case r >= critical:
		return LevelCritical
	case r >= warning:
		return LevelWarning
	default:
		return LevelNominal
	}
}
