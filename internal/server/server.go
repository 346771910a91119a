// Package server exposes the game service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/verte-zerg/levelscore/internal/model"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	maxBodyBytes      = 1 << 20
)

// GameService is the part of game.Service the HTTP layer depends on.
type GameService interface {
	SubmitRound(ctx context.Context, body []byte) (model.SubmitResult, error)
	ExportSnapshot(ctx context.Context) ([]byte, error)
	State() model.GameState
	VersionedState() (model.GameState, uint64)
	CurrentLevel() (string, model.LevelConfig)
}

// Config configures the server.
type Config struct {
	Addr   string
	Logger *log.Logger
}

// Server hosts the game page, API and live feed.
type Server struct {
	httpServer *http.Server
	hub        *Hub
	logger     *log.Logger
}

type handler struct {
	game   GameService
	hub    *Hub
	logger *log.Logger
}

// NewServer builds a server for svc.
func NewServer(svc GameService, cfg Config) (*Server, error) {
	if svc == nil {
		return nil, errors.New("game service is required")
	}
	if cfg.Addr == "" {
		return nil, errors.New("listen address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	hub := NewHub(logger)
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewHandler(svc, hub, logger),
			ReadHeaderTimeout: readHeaderTimeout,
		},
		hub:    hub,
		logger: logger,
	}, nil
}

// NewHandler returns the routed handler. hub may be nil, in which case a private one is used.
func NewHandler(svc GameService, hub *Hub, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	if hub == nil {
		hub = NewHub(logger)
	}
	h := &handler{game: svc, hub: hub, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/", h.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/thankyou", h.handleThankYou).Methods(http.MethodGet)
	r.HandleFunc("/game/api", h.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/game/api", h.handleState).Methods(http.MethodGet)
	r.HandleFunc("/game/ws", h.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/download", h.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Use(withRequestID, withLogging(logger))
	return withCORS(r)
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.httpServer.Addr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close disconnects live clients and stops the listener immediately.
func (s *Server) Close() error {
	s.hub.Close()
	return s.httpServer.Close()
}
