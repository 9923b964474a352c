package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"finlens/internal/config"
	"finlens/internal/handlers/analysis"
	"finlens/internal/handlers/loans"
	"finlens/internal/handlers/networth"
	"finlens/internal/handlers/records"
	"finlens/internal/handlers/recurring"
	"finlens/internal/logger"
	"finlens/internal/services/storage"
	"finlens/internal/version"
)

var (
	cfg   *config.Config
	store storage.Store
)

func main() {
	cfg = config.Load()
	logger.Init(cfg.LogLevel)

	info := version.Get()
	slog.Info("starting finlens", "version", info.Version, "go", info.GoVersion)
	if warn := info.Check(); warn != "" {
		slog.Warn(warn)
	}

	if err := SetupDependencies(cfg); err != nil {
		slog.Error("failed to set up dependencies", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	router := SetupRouter()

	slog.Info("listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// SetupDependencies opens storage and wires the handler packages. Split out
// of main so tests can stand up the full stack against in-memory storage.
func SetupDependencies(c *config.Config) error {
	if c.DatabasePath != "" {
		sqlStore, err := storage.OpenSQLite(c.DatabasePath)
		if err != nil {
			return fmt.Errorf("open database %s: %w", c.DatabasePath, err)
		}
		store = sqlStore
		slog.Info("using sqlite storage", "path", c.DatabasePath)
	} else {
		store = storage.NewMemoryStore()
		slog.Info("using in-memory storage")
	}

	analysis.Initialize(store, c.CacheTTL)
	recurring.Initialize(store)
	loans.Initialize(store)
	networth.Initialize(store)
	records.Initialize(store, c.ExportDirectory)
	return nil
}

// SetupRouter builds the chi router with middleware and all API routes.
func SetupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(rateLimit(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)
		records.RegisterRoutes(r)
		analysis.RegisterRoutes(r)
		recurring.RegisterRoutes(r)
		loans.RegisterRoutes(r)
		networth.RegisterRoutes(r)
	})

	return r
}

// rateLimit applies one token bucket across all clients. This is a single
// user's tracker, not a multi-tenant API, so a global bucket is enough.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": version.Get(),
	})
}
