package httpapi

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/auth"
	"github.com/tbourn/campus-mood-backend/internal/batcher"
	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/config"
	"github.com/tbourn/campus-mood-backend/internal/feed"
	"github.com/tbourn/campus-mood-backend/internal/repo"
	"github.com/tbourn/campus-mood-backend/internal/services"
)

// App holds the long-lived components behind the HTTP API. The reaction
// batcher and the retention sweeper own background work; the process stops
// them through Close and the sweeper's context.
type App struct {
	DB         *gorm.DB
	Clock      clock.Clock
	Meter      *services.UsageMeter
	Gate       *services.QuotaGate
	Stats      *services.StatsService
	Posts      *services.PostService
	Reactions  *batcher.Batcher
	Hub        *feed.Hub
	Sessions   *services.SessionService
	Sweeper    *services.RetentionSweeper
	Challenges services.Challenges
	Verifier   *auth.Verifier
	Policy     auth.DomainPolicy
}

// NewApp wires the services over db. usage selects where store usage is
// counted; nil keeps the counters in the usage_stats table.
func NewApp(db *gorm.DB, cfg config.Config, clk clock.Clock, usage services.UsageStore, log zerolog.Logger) *App {
	if usage == nil {
		usage = repo.UsageTable{
			DB:       db,
			Warning:  services.DefaultWarningThreshold,
			Critical: services.DefaultCriticalThreshold,
		}
	}
	meter := &services.UsageMeter{
		Store:      usage,
		Clock:      clk,
		ReadLimit:  cfg.Usage.ReadLimit,
		WriteLimit: cfg.Usage.WriteLimit,
		Warning:    services.DefaultWarningThreshold,
		Critical:   services.DefaultCriticalThreshold,
		Log:        log,
	}
	gate := &services.QuotaGate{DB: db, Clock: clk, DailyLimit: cfg.Feed.DailyPostLimit, Meter: meter}
	stats := &services.StatsService{DB: db, Clock: clk, Meter: meter}

	posts := &services.PostService{
		DB:             db,
		Clock:          clk,
		Gate:           gate,
		Stats:          stats,
		Meter:          meter,
		Retention:      cfg.Feed.PostRetention,
		PageSize:       cfg.Feed.PageSize,
		Log:            log,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	hub := feed.NewHub(posts.Recent, clk, log)
	posts.Feed = hub

	queue := batcher.New(
		&services.ReactionStore{DB: db, Clock: clk, Meter: meter, Feed: hub},
		clk, cfg.Feed.ReactionBatchInterval, log,
	)
	posts.Pending = queue

	policy := auth.NewDomainPolicy(cfg.Auth.AllowedDomains)
	if policy.Open() {
		ev := log.Warn()
		if cfg.GinMode == "release" {
			ev = log.Error()
		}
		ev.Str("component", "auth").
			Str("gin_mode", cfg.GinMode).
			Msg("ALLOWED_EMAIL_DOMAINS is empty: every email domain may sign in")
	}

	app := &App{
		DB:        db,
		Clock:     clk,
		Meter:     meter,
		Gate:      gate,
		Stats:     stats,
		Posts:     posts,
		Reactions: queue,
		Hub:       hub,
		Sessions: &services.SessionService{
			DB:      db,
			Clock:   clk,
			Gate:    gate,
			Policy:  policy,
			Flusher: queue,
			Meter:   meter,
		},
		Sweeper: &services.RetentionSweeper{
			DB:       db,
			Clock:    clk,
			Interval: cfg.Feed.RetentionSweep,
			Meter:    meter,
			Feed:     hub,
			Log:      log.With().Str("component", "retention").Logger(),
		},
		Challenges: services.Challenges{Clock: clk},
		Policy:     policy,
	}
	if cfg.Auth.JWTSecret != "" {
		app.Verifier = auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	}
	return app
}

// Close persists queued reactions. Call it after the HTTP server stopped
// accepting requests.
func (a *App) Close(ctx context.Context) error {
	return a.Reactions.FlushNow(ctx)
}
