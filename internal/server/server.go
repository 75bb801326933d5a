// Package server serves rendered icons over HTTP.
//
// Routes:
//
//	GET /icons/{identifier}.svg  rendered artifact as image/svg+xml
//	GET /api/icons               registered definitions as JSON
//	GET /api/stats               registry and cache counters
//	GET /health                  health check
//	GET /ws                      registry change events
//	GET /                        icon gallery
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/glyph/internal/config"
	glypherrors "github.com/conneroisu/glyph/internal/errors"
	"github.com/conneroisu/glyph/internal/icons"
	"github.com/conneroisu/glyph/internal/logging"
	"github.com/conneroisu/glyph/internal/types"
)

// IconServer serves icons from an icons.Service.
type IconServer struct {
	config       *config.Config
	service      *icons.Service
	logger       logging.Logger
	httpServer   *http.Server
	serverMutex  sync.RWMutex
	hub          *Hub
	errors       *glypherrors.ErrorHandler
	shutdownOnce sync.Once
}

// EventMessage is sent to websocket clients for every registry change.
type EventMessage struct {
	Type      types.EventType `json:"type"`
	Key       string          `json:"key,omitempty"`
	URL       string          `json:"url,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// New creates an icon server.
func New(cfg *config.Config, service *icons.Service, logger logging.Logger) *IconServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("server")
	return &IconServer{
		config:  cfg,
		service: service,
		logger:  logger,
		hub:     NewHub(logger),
		errors:  glypherrors.NewErrorHandler(logger),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *IconServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /icons/{file}", s.handleIcon)
	mux.HandleFunc("GET /api/icons", s.handleIcons)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	return s.logRequests(s.cors(securityHeaders(mux)))
}

// Start serves until ctx is done or the server is shut down.
func (s *IconServer) Start(ctx context.Context) error {
	s.startBackground(ctx)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Icon server listening", "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server and closes websocket clients.
func (s *IconServer) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")
		s.hub.CloseAll(websocket.StatusGoingAway, "server shutting down")

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})
	return shutdownErr
}

// startBackground runs the websocket hub and the event relay until ctx is
// done.
func (s *IconServer) startBackground(ctx context.Context) {
	go s.hub.Run(ctx)
	go s.forwardEvents(ctx, s.service.Watch())
}

// forwardEvents relays registry events to websocket clients.
func (s *IconServer) forwardEvents(ctx context.Context, events <-chan types.IconEvent) {
	defer s.service.UnWatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.broadcast(ctx, eventMessage(event))
		}
	}
}

func eventMessage(event types.IconEvent) EventMessage {
	msg := EventMessage{Type: event.Type, Key: event.Key, Timestamp: event.Timestamp}
	if event.Key != "" && event.Type != types.EventTypeRemoved {
		msg.URL = iconURL(event.Key)
	}
	return msg
}

func (s *IconServer) broadcast(ctx context.Context, msg EventMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to marshal event message")
		return
	}
	s.hub.Broadcast(data)
}

func iconURL(key string) string {
	return "/icons/" + key + ".svg"
}
