// Command server runs the campus mood feed API.
//
// @title                      Campus Mood Feed API
// @version                    1.0
// @description                Anonymous campus mood posts with batched reactions, daily limits and mood statistics.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/config"
	httpapi "github.com/tbourn/campus-mood-backend/internal/http"
	"github.com/tbourn/campus-mood-backend/internal/observability"
	"github.com/tbourn/campus-mood-backend/internal/repo"
	"github.com/tbourn/campus-mood-backend/internal/services"
	"github.com/tbourn/campus-mood-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	lg := sysutil.ConfigureLogging(cfg.LogLevel, cfg.OTEL.ServiceName, cfg.LogPretty)
	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	if err := run(cfg, ver, lg); err != nil {
		lg.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg config.Config, ver string, lg zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			lg.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := repo.AutoMigrate(db); err != nil {
		_ = repo.CloseDB(db)
		return err
	}

	var usage services.UsageStore
	if cfg.Usage.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Usage.RedisAddr, Password: cfg.Usage.RedisPassword})
		defer rdb.Close()
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pctx).Err()
		cancel()
		if err != nil {
			return err
		}
		usage = repo.NewRedisUsageStore(rdb, "", services.DefaultWarningThreshold, services.DefaultCriticalThreshold)
	}

	app := httpapi.NewApp(db, cfg, clock.NewReal(cfg.Feed.Location()), usage, lg)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, app, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Sweeper.Run(gctx)
		return nil
	})
	g.Go(func() error {
		lg.Info().
			Str("addr", srv.Addr).
			Str("version", ver).
			Str("base_path", cfg.APIBasePath).
			Str("usage_backend", cfg.Usage.Backend).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Live streams hold connections open; they end with the base context.
		if err := srv.Shutdown(sctx); err != nil {
			lg.Warn().Err(err).Msg("http shutdown")
		}
		if err := app.Close(sctx); err != nil {
			lg.Error().Err(err).Msg("final reaction flush failed")
		}
		return nil
	})

	err = g.Wait()
	if cerr := repo.CloseDB(db); cerr != nil {
		lg.Warn().Err(cerr).Msg("db close")
	}
	return err
}
