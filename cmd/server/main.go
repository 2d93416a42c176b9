package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitwiser/internal/auth"
	"github.com/mmynk/splitwiser/internal/config"
	"github.com/mmynk/splitwiser/internal/events"
	"github.com/mmynk/splitwiser/internal/metrics"
	"github.com/mmynk/splitwiser/internal/middleware"
	"github.com/mmynk/splitwiser/internal/service"
	"github.com/mmynk/splitwiser/internal/storage/sqlite"
	"github.com/mmynk/splitwiser/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Setup(logging.Options{
		Level: cfg.SlogLevel(),
		JSON:  cfg.Environment == "production",
	})

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("Publishing ledger events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer publisher.Close()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager, service.PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()

	// Register Connect services
	mux.Handle(service.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store, logger), interceptors))
	mux.Handle(service.NewGroupServiceHandler(service.NewGroupService(store, m, logger), interceptors))
	mux.Handle(service.NewExpenseServiceHandler(service.NewExpenseService(store, publisher, m, logger), interceptors))

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(logger, corsMiddleware(mux)), &http2.Server{})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// loggingMiddleware logs all incoming requests at debug level
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
