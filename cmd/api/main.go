package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/config"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
	appHTTP "github.com/cmlabs-hris/hris-admin-console/internal/handler/http"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/database"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/export"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/sealer"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
	"github.com/cmlabs-hris/hris-admin-console/internal/repository/memory"
	"github.com/cmlabs-hris/hris-admin-console/internal/repository/postgresql"
	redisRepo "github.com/cmlabs-hris/hris-admin-console/internal/repository/redis"
	upstreamRepo "github.com/cmlabs-hris/hris-admin-console/internal/repository/upstream"
	serviceAuth "github.com/cmlabs-hris/hris-admin-console/internal/service/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/service/session"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return err
	}

	sessionRepo, closeStore, err := newSessionRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	base := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	hub := sse.NewHub()
	registry := session.NewRegistry(session.NewFactory(base, hub, export.NewAttendanceExporter(), session.Options{
		Rule:     attendance.ParseStatusRule(cfg.Attendance.StatusRule),
		Location: loc,
	}))
	defer registry.CloseAll()

	authService := serviceAuth.NewAuthService(sessionRepo, upstreamRepo.NewAuthenticator(base), JWTService, serviceAuth.Options{
		SessionTTL: cfg.Session.TTL,
		OnSessionEnd: func(sessionID string) {
			registry.Close(sessionID)
			hub.Disconnect(sessionID)
		},
	})

	scheduler := cron.NewScheduler()
	cron.NewSessionJobs(authService, cfg.Session.SweepInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			FrontendURL: cfg.App.FrontendURL,
			Env:         cfg.App.Env,
			Version:     version,
			LogLevel:    cfg.SlogLevel(),
		},
		JWTService,
		authService,
		appHTTP.NewAuthHandler(authService),
		appHTTP.NewEmployeeHandler(registry),
		appHTTP.NewAttendanceHandler(registry),
		appHTTP.NewLeaveHandler(registry),
		appHTTP.NewDashboardHandler(registry),
		appHTTP.NewEventsHandler(JWTService, authService, hub),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// SSE streams end with the process context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "upstream", cfg.Upstream.BaseURL, "session_store", cfg.Session.Store)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("Shutting down server")
	return server.Shutdown(shutdownCtx)
}

func newSessionRepository(ctx context.Context, cfg *config.Config) (auth.SessionRepository, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStorePostgreSQL:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := postgresql.EnsureSessionSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgresql.NewSessionRepository(db, sealer.New(cfg.Session.EncryptionKey)), db.Close, nil

	case config.SessionStoreRedis:
		rdb, err := redisRepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				slog.Warn("Failed to close redis client", "error", err)
			}
		}
		return redisRepo.NewSessionRepository(rdb, sealer.New(cfg.Session.EncryptionKey)), closeFn, nil
	}
	return memory.NewSessionRepository(), func() {}, nil
}
