// Package server sets up the HTTP server, router, and all route
// definitions.
//
// This is the composition root: the entire dependency chain — database,
// identity verifier, services, handlers — is wired here in one place, and
// each layer only receives what it needs. Handlers never touch the
// database; services never touch HTTP.
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

	"github.com/moodtune/playlist-api/internal/config"
	"github.com/moodtune/playlist-api/internal/handler"
	"github.com/moodtune/playlist-api/internal/identity"
	"github.com/moodtune/playlist-api/internal/middleware"
	sqliteRepo "github.com/moodtune/playlist-api/internal/repository/sqlite"
	"github.com/moodtune/playlist-api/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown to flush the WAL and release the file
// lock.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires the full dependency graph:
//
//	sqlite.DB → services → handlers → routes
//
// The *DB satisfies all three repository interfaces, so it is passed
// directly where an interface is expected.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	verifier, err := identity.NewTokenVerifier(cfg.AuthSecret, cfg.AuthIssuer)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token verifier: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(verifier)

	return s, nil
}

// setupRoutes configures middleware and the route tree.
//
// Middleware order matters: RequestID and RealIP first so the logger sees
// them, Recoverer before anything that can panic, then CORS and request
// logging on everything.
func (s *Server) setupRoutes(verifier identity.Verifier) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	s.router.Use(middleware.Logger(s.logger))

	authService := service.NewAuthService(s.db, verifier, s.logger)
	playlistService := service.NewPlaylistService(s.db, s.logger)
	engagementService := service.NewEngagementService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	playlistHandler := handler.NewPlaylistHandler(playlistService, s.logger)
	searchHandler := handler.NewSearchHandler(playlistService, s.logger)
	engagementHandler := handler.NewEngagementHandler(engagementService, s.logger)

	requireAuth := identity.RequireAuth(verifier, s.db)

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/search", searchHandler.HandleSearch)

		r.Route("/playlists", func(r chi.Router) {
			// Public reads.
			r.Get("/", playlistHandler.HandleList)
			r.Get("/{id}", playlistHandler.HandleGetByID)
			r.Get("/{id}/comments", engagementHandler.HandleListComments)

			// Everything that mutates (or reads private data) is guarded.
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/my", playlistHandler.HandleListMine)
				r.Post("/", playlistHandler.HandleCreate)
				r.Put("/{id}", playlistHandler.HandleUpdate)
				r.Delete("/{id}", playlistHandler.HandleDelete)
				r.Post("/{id}/like", engagementHandler.HandleLike)
				r.Delete("/{id}/like", engagementHandler.HandleUnlike)
				r.Post("/{id}/bookmark", engagementHandler.HandleBookmark)
				r.Delete("/{id}/bookmark", engagementHandler.HandleUnbookmark)
				r.Post("/{id}/comments", engagementHandler.HandleCreateComment)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/bookmarks", engagementHandler.HandleListBookmarks)
			r.Delete("/comments/{id}", engagementHandler.HandleDeleteComment)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
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

// Router exposes the configured chi router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
