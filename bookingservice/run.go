// Package bookingservice wires configuration, storage, mail and HTTP into the
// booking service process.
package bookingservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/novendor/novendor-site/server/internal/api"
	"github.com/novendor/novendor-site/server/internal/auth"
	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/factory"
	"github.com/novendor/novendor-site/server/internal/health"
	"github.com/novendor/novendor-site/server/internal/logger"
	"github.com/novendor/novendor-site/server/internal/mail"
	"github.com/novendor/novendor-site/server/internal/services"
	"github.com/novendor/novendor-site/server/internal/store"
)

// Run starts the booking service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("booking-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("store_driver", cfg.StoreDriver).
		Int("http_port", cfg.HTTPPort).
		Str("data_dir", cfg.DataDir).
		Bool("smtp_enabled", cfg.Mail().Enabled()).
		Msg("Booking service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, transport, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	if c, ok := st.(store.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	svcHealth := startHealthCheckers(ctx, cfg, log, st, transport)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Err(err).Msg("startup health check failed")
		return err
	}

	router := buildRouter(cfg, log, st, transport, svcHealth)
	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies opens the booking store and builds the mail transport once.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, mail.Transport, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("Store adapter unavailable")
		return nil, nil, err
	}
	transport := factory.NewMailTransport(cfg.Mail(), cfg.OutboxDir, log)
	return st, transport, nil
}

func buildRouter(cfg *config.Config, log zerolog.Logger, st store.Store, transport mail.Transport, svcHealth *health.ServiceHealthChecker) http.Handler {
	bookingCfg := cfg.Booking()
	dispatcher := mail.NewDispatcher(transport, bookingCfg, log)
	svc := services.NewBookingService(st, dispatcher, bookingCfg, services.WithLogger(log))
	admin := auth.NewAdminAuthorizer(cfg.AdminToken)
	if !admin.Configured() {
		log.Warn().Msg("BOOKING_ADMIN_TOKEN not set; resend endpoint disabled")
	}
	return api.NewRouter(svc, admin, svcHealth, log)
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, transport mail.Transport) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)
	checkers = append(checkers, storeChecker)

	// The SMTP relay is not probed; a down relay surfaces as a delivery error per request.
	if p, ok := transport.(health.HealthPinger); ok {
		outboxChecker := health.NewPingChecker("outbox", p, log, probeTimeout)
		go outboxChecker.Start(ctx, interval)
		checkers = append(checkers, outboxChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// SMTP delivery happens inside the request
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
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

// startupHealthTimeout is interval*2 with a floor of 10 seconds.
func startupHealthTimeout(healthIntervalSeconds int) time.Duration {
	timeout := healthIntervalSeconds * 2
	if timeout < 10 {
		timeout = 10
	}
	return time.Duration(timeout) * time.Second
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeout := startupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
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
