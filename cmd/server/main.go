package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/aquaflow/aquaflow/internal/config"
	"github.com/aquaflow/aquaflow/internal/database"
	"github.com/aquaflow/aquaflow/internal/handler"
	"github.com/aquaflow/aquaflow/internal/queue"
	"github.com/aquaflow/aquaflow/internal/repository"
	"github.com/aquaflow/aquaflow/internal/router"
)

const (
	shutdownTimeout  = 10 * time.Second
	sessionPurgeTick = time.Hour
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Resolve()
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	backend, err := database.Open(cfg)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := backend.EnsureSchema(ctx); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(backend)
	sessions := repository.NewSessionRepo(backend)
	customers := repository.NewCustomerRepo(backend)
	services := repository.NewServiceRepo(backend)
	dues := repository.NewRentDueRepo(backend)
	purchases := repository.NewPurchaseRepo(backend)
	items := repository.NewInventoryRepo(backend)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	router.Register(e, router.Deps{
		Redis:      rdb,
		RateLimit:  config.LoadRateLimitConfig(),
		Cache:      config.LoadCacheConfig(),
		Auth:       handler.NewAuthHandler(cfg, users, sessions),
		Customers:  handler.NewCustomerHandler(customers),
		Services:   handler.NewServiceHandler(services, customers),
		RentDues:   handler.NewRentDueHandler(dues, customers),
		Purchases:  handler.NewPurchaseHandler(purchases),
		Inventory:  handler.NewInventoryHandler(items),
		Users:      handler.NewUserHandler(users),
		Dashboard:  handler.NewDashboardHandler(customers, services, dues, items),
		Sessions:   sessions,
		Identities: users,
	})

	go queue.StartServiceEventConsumer(ctx)
	go purgeSessions(ctx, sessions)

	go func() {
		addr := ":" + cfg.Port
		slog.Info("listening", "addr", addr, "env", cfg.Env, "dialect", cfg.Dialect)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}
	if err := backend.Close(); err != nil {
		slog.Warn("closing database pool", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Warn("closing redis", "error", err)
		}
	}
}

// purgeSessions sweeps expired session rows so the table does not grow
// unbounded. The auth gate already refuses expired sessions, this is cleanup.
func purgeSessions(ctx context.Context, sessions *repository.SessionRepo) {
	t := time.NewTicker(sessionPurgeTick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("session purge failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("purged expired sessions", "count", n)
			}
		}
	}
}
