// Package server wires storage, the auth service, handlers and middleware
// into a runnable HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stancehq/stance/internal/config"
	"github.com/stancehq/stance/internal/server/auth"
	"github.com/stancehq/stance/internal/server/handlers"
	"github.com/stancehq/stance/internal/server/middleware"
	"github.com/stancehq/stance/internal/server/storage"
)

// Storage is the persistence surface the server needs
type Storage interface {
	storage.UserStorage
	storage.TokenStorage
}

// Server is the stance HTTP server
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// New builds the full server: auth service on top of store, route table,
// and the recovery -> logging -> routing middleware chain.
func New(cfg *config.Config, logger *slog.Logger, store Storage, version string) (*Server, error) {
	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.AccessTokenTTL)
	refresh := auth.NewRefreshManager(store, cfg.RefreshTokenTTL)

	authService, err := auth.NewService(logger, store, hasher, codec, refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	authHandler := handlers.NewAuthHandler(logger, authService)
	userHandler := handlers.NewUserHandler(logger, store)
	healthHandler := handlers.NewHealthHandler(logger, version)

	requireAuth := middleware.RequireAuth(logger, codec)
	optionalAuth := middleware.OptionalAuth(logger, codec)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("POST /auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.Handle("GET /users/me", requireAuth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("GET /users/{username}", optionalAuth(http.HandlerFunc(userHandler.Profile)))
	mux.HandleFunc("GET /health", healthHandler.Health)

	var handler http.Handler = mux
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return <-errCh
}
