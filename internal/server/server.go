// Package server assembles the HTTP API of the store of record.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iudanet/medicnote/internal/server/config"
	"github.com/iudanet/medicnote/internal/server/handlers"
	"github.com/iudanet/medicnote/internal/server/jwt"
	"github.com/iudanet/medicnote/internal/server/middleware"
	"github.com/iudanet/medicnote/internal/server/storage"
)

const healthPath = "/api/v1/health"

// Store is everything the API persists
type Store interface {
	storage.UserStorage
	storage.RecordStorage
}

// Server serves the medicnote API
type Server struct {
	logger  *slog.Logger
	router  *mux.Router
	limiter *middleware.RateLimiter
	cfg     *config.Config
}

// New wires handlers and middleware over store
func New(cfg *config.Config, store Store, logger *slog.Logger, version string) *Server {
	tokens := jwt.NewService(cfg.JWTSecret, cfg.TokenTTL)
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, logger)

	authHandler := handlers.NewAuthHandler(logger, store, tokens)
	healthHandler := handlers.NewHealthHandler(logger, store, version)
	recordsHandler := handlers.NewRecordsHandler(logger, store)

	router := mux.NewRouter()
	router.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger, healthPath),
	)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.SendError(logger, w, "no such endpoint", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.SendError(logger, w, "method not allowed", http.StatusMethodNotAllowed)
	})

	v1 := router.PathPrefix("/api/v1").Subrouter()

	optionalAuth := middleware.OptionalAuthMiddleware(logger, tokens)
	v1.Handle("/health", optionalAuth(http.HandlerFunc(healthHandler.Health))).Methods(http.MethodGet)

	auth := v1.PathPrefix("/auth").Subrouter()
	auth.Use(limiter.Middleware)
	auth.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	records := v1.PathPrefix("/tables/{table}/records").Subrouter()
	records.Use(middleware.AuthMiddleware(logger, tokens))
	records.HandleFunc("", recordsHandler.List).Methods(http.MethodGet)
	records.HandleFunc("", recordsHandler.Create).Methods(http.MethodPost)
	records.HandleFunc("/{id}", recordsHandler.Get).Methods(http.MethodGet)
	records.HandleFunc("/{id}", recordsHandler.Update).Methods(http.MethodPut)
	records.HandleFunc("/{id}", recordsHandler.Delete).Methods(http.MethodDelete)

	return &Server{
		logger:  logger,
		router:  router,
		limiter: limiter,
		cfg:     cfg,
	}
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases background resources
func (s *Server) Close() {
	s.limiter.Stop()
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	case err, ok := <-serverErr:
		if !ok {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}
