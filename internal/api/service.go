// Package api exposes a small diagnostic HTTP surface: the cached network
// state and a websocket stream of decoded daemon events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thread-tools/wpanbus/internal/hub"
)

type Service struct {
	address string
	hub     *hub.Hub
	server  *http.Server
}

func NewService(address string, h *hub.Hub) *Service {
	return &Service{
		address: address,
		hub:     h,
	}
}

// Start serves until the context is cancelled or the listener fails.
func (s *Service) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /events", s.handleEvents)

	s.server = &http.Server{
		Addr:        s.address,
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	log.Infof("Starting API service at %s", s.address)
	defer log.Info("Stopping API service")

	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Service) Close() error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := s.hub.State()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statusPayload{
		Associated:  state.Associated,
		NetworkName: state.NetworkName,
		ExtPanID:    state.ExtPanID,
	}); err != nil {
		log.WithError(err).Debug("Failed to write status response")
	}
}

type statusPayload struct {
	Associated  bool   `json:"associated"`
	NetworkName string `json:"networkName,omitempty"`
	ExtPanID    string `json:"extPanId,omitempty"`
}
