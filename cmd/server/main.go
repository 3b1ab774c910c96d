package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/cache"
	"github.com/iliyamo/private-dining-reservation/internal/config"
	"github.com/iliyamo/private-dining-reservation/internal/database"
	"github.com/iliyamo/private-dining-reservation/internal/handler"
	"github.com/iliyamo/private-dining-reservation/internal/middleware"
	"github.com/iliyamo/private-dining-reservation/internal/queue"
	"github.com/iliyamo/private-dining-reservation/internal/repository"
	"github.com/iliyamo/private-dining-reservation/internal/router"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg := config.Load()

	logger := log.New("dining")
	logger.SetLevel(cfg.LogLevel)
	logger.SetHeader(`${time_rfc3339} ${level} ${prefix} ${short_file}:${line}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, health, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	if cfg.SeedFile != "" {
		seed, err := repository.LoadSeed(cfg.SeedFile)
		if err != nil {
			logger.Fatalf("seed: %v", err)
		}
		if err := seed.Apply(ctx, store.(repository.SeedTarget)); err != nil {
			logger.Fatalf("seed: %v", err)
		}
		logger.Infof("seeded %d restaurants from %s", len(seed.Restaurants), cfg.SeedFile)
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		logger.Warnf("redis unavailable, rate limiting and availability cache disabled: %v", err)
	} else {
		defer rdb.Close()
	}

	bc := config.LoadBookingConfig()
	opts := booking.Options{
		Rules: booking.Rules{
			HorizonDays:  bc.HorizonDays,
			MinPartySize: bc.MinPartySize,
			MaxPartySize: bc.MaxPartySize,
		},
		Ledger:       booking.LedgerOptions{MaxAttempts: bc.RetryAttempts, Backoff: bc.RetryBackoff},
		LimitedRatio: bc.LimitedRatio,
		Logger:       logger,
	}
	if ac := cache.NewAvailabilityCache(config.LoadCacheConfig(), rdb, logger); ac != nil {
		opts.Cache = ac
	}

	ec := config.LoadEventsConfig()
	if ec.Enabled {
		pub := queue.NewPublisher(ec, logger)
		defer pub.Close()
		opts.Events = pub
	}
	if ec.ConsumerEnabled {
		consumer := queue.NewConsumer(ec, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("audit consumer stopped: %v", err)
			}
		}()
	}

	svc := booking.NewService(store, booking.RealClock{}, opts)

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	router.RegisterRoutes(e, router.Deps{
		Service:   svc,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Health:    health,
		Logger:    logger,
	})

	addr := ":" + cfg.Port
	logger.Infof("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// openStore builds the configured store.  The returned pinger is nil for
// the memory store.
func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (booking.Store, handler.Pinger, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warnf("using in-memory store; reservations are lost on restart")
		return repository.NewMemoryStore(), nil, func() {}
	}

	db, err := database.Open(ctx, database.Options{
		User:     cfg.DBUser,
		Pass:     cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		MaxConns: cfg.DBMaxConns,
	})
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	return repository.NewMySQLStore(db), db, func() { _ = db.Close() }
}
