// Package server wires the application together and runs the HTTP server.
//
// COMPOSITION ROOT:
// New is the one place where every dependency is built and handed to the
// next layer:
//
//	sqlite.DB → state.Store → services → handlers → routes
//
// Nothing below this package constructs its own dependencies, which is what
// lets the service and handler tests swap in fakes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/insulog/internal/config"
	"github.com/sakif/insulog/internal/handler"
	"github.com/sakif/insulog/internal/insulin"
	"github.com/sakif/insulog/internal/middleware"
	sqliteRepo "github.com/sakif/insulog/internal/repository/sqlite"
	"github.com/sakif/insulog/internal/service"
	"github.com/sakif/insulog/internal/state"
)

// Server owns the router and the database connection.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and builds the router.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it isn't confused with the
// modernc.org/sqlite driver package.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Database.Path != ":memory:" {
		dir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET  /healthz                            → liveness + database ping
//	POST /api/user                           → create account (rate limited)
//	GET  /api/user/{id}                      → account with meals
//	POST /api/user/{id}/meal                 → record meal
//	POST /api/user/{id}/insulinSensitivity   → record sensitivity
//	GET  /api/user/{id}/dashboard            → meal cards with estimates
//	PUT  /api/meal/{id}                      → edit meal
//	POST /api/estimate                       → stateless dose calculator
//
// MIDDLEWARE ORDER MATTERS:
// RequestID first so the logger can print it, RealIP before the rate limiter
// so it keys on the client and not the proxy, Recoverer innermost so a panic
// is still logged as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Dependency chain ===
	store := state.New(s.db.GetUser)
	estimator := service.NewEstimator(insulin.NewClassifier())

	userService := service.NewUserService(s.db, store, s.logger)
	mealService := service.NewMealService(s.db, store, s.logger)
	dashboardService := service.NewDashboardService(store, estimator, s.logger)

	users := handler.NewUserHandler(userService, s.logger)
	meals := handler.NewMealHandler(mealService, s.logger)
	dashboard := handler.NewDashboardHandler(dashboardService, s.logger)
	estimate := handler.NewEstimateHandler(estimator, s.logger)
	health := handler.NewHealthHandler(s.db, s.logger)

	signupLimiter := middleware.NewRateLimiter(
		s.config.RateLimit.SignupPerMinute,
		s.config.RateLimit.SignupBurst,
		http.HandlerFunc(handler.HandleRateLimited),
	)

	s.router.Get("/healthz", health.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.With(signupLimiter.Middleware).Post("/user", users.HandleCreate)
		r.Get("/user/{id}", users.HandleGet)
		r.Post("/user/{id}/meal", meals.HandleCreate)
		r.Post("/user/{id}/insulinSensitivity", users.HandleUpdateSensitivity)
		r.Get("/user/{id}/dashboard", dashboard.HandleGet)
		r.Put("/meal/{id}", meals.HandleUpdate)
		r.Post("/estimate", estimate.HandleEstimate)
	})
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout and closes the database.
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.GetShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Close releases the database without running the server.
func (s *Server) Close() error {
	return s.db.Close()
}
