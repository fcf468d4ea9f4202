// Package server is the composition root: it opens storage, builds the
// services and handlers, mounts the routes and runs the HTTP server with
// graceful shutdown.
//
//	config.Config → Store (jsonfile | sqlite) → AuthService, TaskService
//	             → AuthHandler, TaskHandler, WebHandler → chi router
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
	"github.com/go-chi/cors"

	"github.com/sakif/todo-app/internal/auth"
	"github.com/sakif/todo-app/internal/config"
	"github.com/sakif/todo-app/internal/handler"
	"github.com/sakif/todo-app/internal/middleware"
	"github.com/sakif/todo-app/internal/repository"
	"github.com/sakif/todo-app/internal/repository/jsonfile"
	sqliteRepo "github.com/sakif/todo-app/internal/repository/sqlite"
	"github.com/sakif/todo-app/internal/service"
)

// Server owns the router and the store. The store is closed when Start
// returns or on Close.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New wires the application from cfg. cfg must already have passed
// Validate; New still fails if the signing secret is unusable.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	passwords, err := auth.NewPasswordService(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	users, err := store.CountUsers(context.Background())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("reading storage: %w", err)
	}
	logger.Info("storage ready",
		slog.String("driver", cfg.StorageDriver),
		slog.Int("users", users),
	)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(tokens, passwords); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func openStore(cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return db, nil
	case config.DriverJSONFile:
		store, err := jsonfile.Open(cfg.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("opening data dir: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// setupRoutes configures middleware and routes.
//
//	GET    /                 → app shell (HTML)
//	GET    /static/*         → CSS and JS
//	GET    /health           → liveness
//	POST   /auth/register    → create account, returns token
//	POST   /auth/login       → returns token
//	GET    /auth/me          → current user            [bearer]
//	GET    /tasks            → list own tasks          [bearer]
//	POST   /tasks            → create task             [bearer]
//	PUT    /tasks/{id}       → update own task         [bearer]
//	DELETE /tasks/{id}       → delete own task         [bearer]
//
// The auth and task routes are mounted a second time under /api, which is
// the prefix the bundled frontend uses.
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{chimiddleware.RequestIDHeader},
		MaxAge:         300,
	}))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	webHandler, err := handler.NewWebHandler(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}
	s.router.Get("/", webHandler.HandleIndex)
	s.router.Get("/health", handler.HandleHealth)

	authService := service.NewAuthService(s.store, tokens, passwords, s.logger)
	taskService := service.NewTaskService(s.store, s.store, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)

	api := func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/me", authHandler.HandleMe)
			r.Get("/tasks", taskHandler.HandleList)
			r.Post("/tasks", taskHandler.HandleCreate)
			r.Put("/tasks/{id}", taskHandler.HandleUpdate)
			r.Delete("/tasks/{id}", taskHandler.HandleDelete)
		})
	}
	s.router.Group(api)
	s.router.Route("/api", api)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"no such route"}` + "\n"))
	})

	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}

// Start listens on the configured port and blocks until SIGINT or SIGTERM,
// then drains in-flight requests for up to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("storage", s.config.StorageDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
