package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aleister1102/docdiff/internal/config"
	"github.com/aleister1102/docdiff/internal/extractor"
	"github.com/aleister1102/docdiff/internal/session"
)

// Server exposes the comparison session and history over HTTP.
type Server struct {
	config     config.ServerConfig
	logger     zerolog.Logger
	manager    *session.Manager
	extractor  *extractor.Extractor
	httpServer *http.Server
}

// NewServer wires the router and returns a server ready to start.
func NewServer(cfg config.ServerConfig, logger zerolog.Logger, manager *session.Manager, ext *extractor.Extractor) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger.With().Str("module", "Server").Logger(),
		manager:   manager,
		extractor: ext,
	}

	s.httpServer = &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     s.Router(),
		ReadTimeout: time.Duration(cfg.ReadTimeoutSecs) * time.Second,
	}
	return s
}

// Router builds the API route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/compare", s.handleCompare)
		r.Post("/parse", s.handleParse)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/new", s.handleNewSession)
			r.Post("/example", s.handleLoadExample)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Delete("/", s.handleClearHistory)
			r.Get("/{id}", s.handleLoadHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
		})
	})

	return r
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (s *Server) Stop(ctx context.Context) error {
	timeout := time.Duration(s.config.ShutdownTimeoutSecs) * time.Second
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
