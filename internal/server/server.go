// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and
// routes. It decides which URL patterns map to which handlers, what
// middleware runs where, and how the server starts and stops gracefully.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go creates: Config, logger → passed to Server
//	Server.New() creates: sqlite.DB → TokenService/PasswordService
//	                      → AuthService → AuthHandler
//
// This is the "composition root" pattern — every dependency is wired in one
// place rather than scattered across the codebase. Each layer only receives
// what it needs: the service gets the repository interface (not the concrete
// sqlite.DB), the handler gets the service (not the repository).
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mahirfaisal/locallynk/internal/auth"
	"github.com/mahirfaisal/locallynk/internal/config"
	"github.com/mahirfaisal/locallynk/internal/handler"
	"github.com/mahirfaisal/locallynk/internal/middleware"
	sqliteRepo "github.com/mahirfaisal/locallynk/internal/repository/sqlite"
	"github.com/mahirfaisal/locallynk/internal/service"
)

// Server owns the router, the configuration, and the database connection.
//
// RESOURCE MANAGEMENT:
// The Server owns the SQLite pool (db). When the server shuts down, the
// connection must be closed to flush the WAL and release the file lock;
// Start() handles that during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server from the given configuration.
//
// The full dependency chain is assembled here:
//  1. Open the credential store (sqlite.New)
//  2. Build the token and password services from config
//  3. Build AuthService on top of all three
//  4. Wire the handler to routes
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // clean up if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST /api/auth/signup   → register, set session cookie (201)
//	POST /api/auth/login    → authenticate, set session cookie (200)
//	GET  /api/auth/check    → session state, always 200
//	POST /api/auth/signout  → clear session cookie
//	GET  /api/me            → full profile (requires valid session)
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
// 1. RequestID — assigns a unique ID to each request (for tracing)
// 2. RealIP — extracts the client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing;
//    this is the backstop that keeps one bad request from taking the
//    process down
// 4. CORS — the frontend runs on a different origin (Vite dev server),
//    and session cookies only flow cross-origin when the server both
//    names the origin explicitly and allows credentials
// 5. Logger — logs each request with timing info
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)

	// AllowCredentials is what lets the browser attach the HttpOnly session
	// cookie to cross-origin requests. With credentials enabled the origin
	// cannot be "*" — it has to be the configured frontend origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	s.router.Use(middleware.Logger(s.logger))

	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) implements repository.UserRepository
	//   AuthService receives the repository interface + token/password services
	//   AuthHandler receives the service
	//
	// The handler never touches the database directly. The service never
	// touches HTTP.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Get("/check", authHandler.HandleCheck)
			r.Post("/signout", authHandler.HandleSignOut)
		})

		// Protected routes — RequireAuth validates the session cookie and
		// rejects anonymous requests with 401 before the handler runs.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases the file lock)
//
// The deferred db.Close ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("frontendOrigin", s.config.FrontendOrigin),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
