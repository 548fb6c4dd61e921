// Package services – StatsService
//
// StatsService maintains the per-day mood rollups: a running total, a mood
// breakdown, the number of challenge answers, the number of distinct authors
// and the day's top mood. Rollups are never deleted, so statistics outlive the
// posts they were computed from.
package services

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/repo"
)

// DefaultSummaryDays is the window of Summary when none is given.
const DefaultSummaryDays = 30

// MaxStatsDays bounds range queries.
const MaxStatsDays = 90

// MoodCount is one row of a ranked mood list.
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}

// StatsSummary aggregates the rollups of a window of days.
type StatsSummary struct {
	Days              int         `json:"days"`
	DaysWithData      int         `json:"days_with_data"`
	TotalPosts        int         `json:"total_posts"`
	PeakActiveUsers   int         `json:"peak_active_users"`
	ChallengePosts    int         `json:"challenge_posts"`
	AverageDailyPosts float64     `json:"average_daily_posts"`
	TopMoods          []MoodCount `json:"top_moods"`
}

// StatsService reads and updates DailyStats.
type StatsService struct {
	DB    *gorm.DB
	Clock clock.Clock
	Meter *UsageMeter
}

// RecordPost folds one post into today's rollup, creating it on first use.
func (s *StatsService) RecordPost(ctx context.Context, mood string, isChallenge bool) error {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "RecordPost", trace.WithAttributes(attribute.String("mood", mood)))
	defer span.End()

	today := clock.Today(s.Clock)
	writes := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := repo.GetDailyStats(ctx, tx, today)
		if isNotFound(err) {
			d = &domain.DailyStats{Date: today}
		} else if err != nil {
			return err
		}
		breakdown := d.Breakdown()
		breakdown[mood]++
		d.MoodBreakdown = datatypes.NewJSONType(breakdown)
		d.TotalPosts++
		if isChallenge {
			d.ChallengePosts++
		}
		d.TopMood = TopMood(breakdown)
		writes = 1
		return repo.SaveDailyStats(ctx, tx, d)
	})
	s.Meter.Observe(ctx, 1, writes)
	if err != nil {
		return fmt.Errorf("stats: record post: %w", err)
	}
	return nil
}

// GetDailyStats returns the rollup for day (YYYY-MM-DD) or ErrNoStats.
func (s *StatsService) GetDailyStats(ctx context.Context, day string) (*domain.DailyStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "GetDailyStats", trace.WithAttributes(attribute.String("day", day)))
	defer span.End()

	if _, err := clock.ParseDay(s.Clock, day); err != nil {
		return nil, ErrInvalidDate
	}
	d, err := repo.GetDailyStats(ctx, s.DB, day)
	s.Meter.Observe(ctx, 1, 0)
	if isNotFound(err) {
		return nil, ErrNoStats
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetRecentStats returns the rollups of the last days calendar days,
// today included, most recent first. Days without posts are omitted.
func (s *StatsService) GetRecentStats(ctx context.Context, days int) ([]domain.DailyStats, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "GetRecentStats", trace.WithAttributes(attribute.Int("days", days)))
	defer span.End()

	if days <= 0 {
		return []domain.DailyStats{}, nil
	}
	if days > MaxStatsDays {
		days = MaxStatsDays
	}
	now := s.Clock.Now().In(s.Clock.Location())
	to := now.Format(clock.DayLayout)
	from := now.AddDate(0, 0, -(days - 1)).Format(clock.DayLayout)

	out, err := repo.ListDailyStats(ctx, s.DB, from, to)
	s.Meter.Observe(ctx, len(out), 0)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.DailyStats{}
	}
	return out, nil
}

// RefreshActiveUsers recounts the distinct authors of day's posts and stores
// the result on the rollup. Posts already swept by retention no longer count.
func (s *StatsService) RefreshActiveUsers(ctx context.Context, day string) (int, error) {
	tr := otel.Tracer("services/StatsService")
	ctx, span := tr.Start(ctx, "RefreshActiveUsers", trace.WithAttributes(attribute.String("day", day)))
	defer span.End()

	start, err := clock.ParseDay(s.Clock, day)
	if err != nil {
		return 0, ErrInvalidDate
	}
	end := start.AddDate(0, 0, 1)
	n, err := repo.CountDistinctAuthors(ctx, s.DB, start, end)
	if err != nil {
		return 0, err
	}
	err = repo.SetActiveUsers(ctx, s.DB, day, int(n))
	s.Meter.Observe(ctx, 1, 1)
	if isNotFound(err) {
		return 0, ErrNoStats
	}
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Summary aggregates the last days rollups: totals, the peak number of
// active users, the average posts per recorded day and the five most
// frequent moods.
func (s *StatsService) Summary(ctx context.Context, days int) (*StatsSummary, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	if days > MaxStatsDays {
		days = MaxStatsDays
	}
	list, err := s.GetRecentStats(ctx, days)
	if err != nil {
		return nil, err
	}
	sum := &StatsSummary{Days: days, DaysWithData: len(list), TopMoods: []MoodCount{}}
	moods := map[string]int{}
	for i := range list {
		d := &list[i]
		sum.TotalPosts += d.TotalPosts
		sum.ChallengePosts += d.ChallengePosts
		if d.ActiveUsers > sum.PeakActiveUsers {
			sum.PeakActiveUsers = d.ActiveUsers
		}
		for m, c := range d.Breakdown() {
			moods[m] += c
		}
	}
	if len(list) > 0 {
		sum.AverageDailyPosts = float64(sum.TotalPosts) / float64(len(list))
	}
	ranked := RankMoods(moods)
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	sum.TopMoods = append(sum.TopMoods, ranked...)
	return sum, nil
}

// RankMoods orders moods by count descending, ties by mood id ascending.
func RankMoods(breakdown map[string]int) []MoodCount {
	out := make([]MoodCount, 0, len(breakdown))
	for m, c := range breakdown {
		if c > 0 {
			out = append(out, MoodCount{Mood: m, Count: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Mood < out[j].Mood
	})
	return out
}

// TopMood returns the most frequent mood, ties going to the
// lexicographically smallest id. It returns "" for an empty breakdown.
func TopMood(breakdown map[string]int) string {
	r := RankMoods(breakdown)
	if len(r) == 0 {
		return ""
	}
	return r[0].Mood
}
