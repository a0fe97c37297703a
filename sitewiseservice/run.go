// Package sitewiseservice wires configuration, storage, the team roster and
// the HTTP API into a runnable service.
package sitewiseservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sitewise/sitewise-server/internal/api"
	"github.com/sitewise/sitewise-server/internal/auth"
	"github.com/sitewise/sitewise-server/internal/config"
	"github.com/sitewise/sitewise-server/internal/health"
	"github.com/sitewise/sitewise-server/internal/insights"
	"github.com/sitewise/sitewise-server/internal/logger"
	"github.com/sitewise/sitewise-server/internal/roster"
	"github.com/sitewise/sitewise-server/internal/services"
	"github.com/sitewise/sitewise-server/internal/store"
	"github.com/sitewise/sitewise-server/internal/store/postgres"
	"github.com/sitewise/sitewise-server/internal/store/sqlite"
)

// Run starts the sitewise HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("sitewise-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Sitewise service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	ros, err := loadRoster(cfg, log)
	if err != nil {
		return err
	}

	ic := newInsightsClient(cfg, log)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	userSvc := services.NewUserService(st, tokens)
	if err := userSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		log.Error().Stack().Err(err).Msg("Admin seed failed")
		return err
	}

	var classifier services.Classifier
	if ic != nil {
		classifier = ic
	}
	router := api.NewRouter(api.Deps{
		Users:    userSvc,
		Visits:   services.NewVisitService(st, ros),
		Receipts: services.NewReceiptService(st),
		Issues:   services.NewIssueService(st, classifier, log),
		Reports:  services.NewReportService(st, ros),
		Tokens:   tokens,
		Insights: ic,
	})

	// Start health checkers and bind the aggregate to /api/health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, ic)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore opens the configured storage adapter.
func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			log.Error().Stack().Err(err).Str("path", cfg.SQLitePath).Msg("SQLite store unavailable")
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error().Stack().Err(err).Msg("Postgres store unavailable")
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// loadRoster reads the team roster when configured. Team filters and team
// summaries degrade to empty without one.
func loadRoster(cfg *config.Config, log zerolog.Logger) (*roster.Roster, error) {
	if cfg.RosterPath == "" {
		log.Info().Msg("No roster configured; team aggregation disabled")
		return roster.Empty(), nil
	}
	ros, err := roster.Load(cfg.RosterPath)
	if err != nil {
		log.Error().Stack().Err(err).Str("path", cfg.RosterPath).Msg("Roster load failed")
		return nil, err
	}
	log.Info().Int("teams", len(ros.Teams())).Msg("Roster loaded")
	return ros, nil
}

// newInsightsClient builds the analysis client, nil when no upstream is set.
func newInsightsClient(cfg *config.Config, log zerolog.Logger) *insights.Client {
	if cfg.InsightsURL == "" {
		log.Info().Msg("No insights upstream configured; analysis endpoints disabled")
		return nil
	}
	timeout := time.Duration(cfg.InsightsTimeoutSeconds) * time.Second
	return insights.New(cfg.InsightsURL, cfg.InsightsAPIKey, cfg.InsightsModel, timeout)
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, ic *insights.Client) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	var checkers []health.HealthChecker

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)
	checkers = append(checkers, storeChecker)

	if ic != nil {
		icChecker := health.NewPingChecker("insights", ic, log, probeTimeout)
		go icChecker.Start(ctx, interval)
		checkers = append(checkers, icChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
