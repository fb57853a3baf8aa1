package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/cache"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/payments"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/splitter"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/memory"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
	"github.com/mmynk/settleup/pkg/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("SETTLEUP_CONFIG"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Configure(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	simplifyCache, err := openCache(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	rounding, err := calculator.ParseRounding(cfg.Ledger.Rounding)
	if err != nil {
		return err
	}

	l := ledger.New(store, simplifyCache, ledger.Options{SortByMagnitude: cfg.Ledger.SortByMagnitude})
	split := splitter.New(l, splitter.Config{Rounding: rounding, StrictCustomSplit: cfg.Ledger.StrictCustomSplit})
	recorder := payments.NewRecorder(l)

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = rand.Text()
		slog.Warn("No JWT secret configured, generated one for this process; tokens will not survive a restart")
	}
	jwtManager := auth.NewJWTManager(secret, cfg.JWT.TTL)
	authenticator := auth.NewPasswordAuthenticator(store, 0)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, service.PublicProcedures()...),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()

	// Register Connect services
	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, store, slog.Default()), interceptors)
	mux.Handle(authPath, authHandler)

	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(service.NewGroupService(store), interceptors)
	mux.Handle(groupPath, groupHandler)

	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(service.NewLedgerService(l, split, recorder), interceptors)
	mux.Handle(ledgerPath, ledgerHandler)

	mux.Handle("/metrics", promhttp.Handler())

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.DatabaseConfig) (storage.Store, error) {
	if cfg.Path == "" {
		slog.Warn("No database path configured, using in-memory storage")
		return memory.New(), nil
	}
	store, err := sqlite.New(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.Path)
	return store, nil
}

func openCache(ctx context.Context, cfg config.RedisConfig) (cache.Cache, error) {
	if cfg.Addr == "" {
		return cache.NewInMemoryCache(cfg.TTL), nil
	}
	c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Redis cache enabled", "addr", cfg.Addr)
	return c, nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
