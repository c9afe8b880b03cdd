// Copyright (c) 2026 CLinCoDa. All rights reserved.

// Command api is the entry point for the SGPI HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the collection store (durable snapshots when PERSIST=true).
//  4. Connect to Redis when configured (reset tokens fall back to memory).
//  5. Apply development seed data when requested.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/CLinCoDa/Repositoria-SGPI/internal/api"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/convocatoria"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/config"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/constants"
	redisstore "github.com/CLinCoDa/Repositoria-SGPI/internal/platform/redis"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/platform/sec"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/seed"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/solicitud"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/store"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users"
	"github.com/CLinCoDa/Repositoria-SGPI/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("persist", cfg.Persist),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Collection Store ───────────────────────────────────────────────
	dataStore, err := store.Open(store.Options{
		DataDir: cfg.DataDir,
		Persist: cfg.Persist,
		Logger:  log,
	})
	must(log, err, "open store")

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var resetTokens auth.ResetTokenRepository = auth.NewMemoryResetTokenRepository()
	var checkCache func() error

	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		resetTokens = auth.NewRedisResetTokenRepository(rdb)
		checkCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	} else {
		log.Info("redis not configured, reset tokens held in process memory")
	}

	// ── 5. Seed Data ──────────────────────────────────────────────────────
	if cfg.Seed {
		must(log, seed.Apply(dataStore, log), "apply seed data")
	}

	// ── 6. Auth Service ───────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckStore: func() error {
			return os.MkdirAll(cfg.DataDir, 0o755)
		},
		CheckCache: checkCache,
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(dataStore, resetTokens, jwtSvc, log)
	authHandler := auth.NewHandler(authService, dataStore)

	convocatoriaService := convocatoria.NewService(dataStore, log)
	convocatoriaHandler := convocatoria.NewHandler(convocatoriaService)

	solicitudService := solicitud.NewService(dataStore, dataStore, log)
	solicitudHandler := solicitud.NewHandler(solicitudService)

	usersService := users.NewService(dataStore, log)
	usersHandler := users.NewHandler(usersService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         authHandler,
		Convocatoria: convocatoriaHandler,
		Solicitud:    solicitudHandler,
		Users:        usersHandler,
		Stats:        dataStore,
	}

	server := api.NewServer(context.Background(), cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
