package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ChannelStatus is the health of one delivery channel.
type ChannelStatus struct {
	Name               string `json:"name"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

// ChannelHealthFunc reports the current state of every delivery channel.
type ChannelHealthFunc func() []ChannelStatus

// HealthServer serves:
//   - /health: liveness, always 200
//   - /health/ready: 200 once SetReady(true) was called, 503 before
//   - /health/channels: 503 when any channel's circuit breaker is open
//   - /metrics: Prometheus exposition
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	isReady  atomic.Bool
	channels ChannelHealthFunc
	server   *http.Server
}

type healthResponse struct {
	Status string `json:"status"`
}

type channelHealthResponse struct {
	Healthy  bool            `json:"healthy"`
	Channels []ChannelStatus `json:"channels"`
}

// NewHealthServer creates a server that is not started and not ready.
// channels may be nil.
func NewHealthServer(addr string, logger *slog.Logger, channels ChannelHealthFunc) *HealthServer {
	return &HealthServer{
		addr:     addr,
		logger:   logger,
		channels: channels,
	}
}

// Handler returns the routing for all endpoints.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	mux.HandleFunc("/health/channels", h.handleChannels)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves until ctx is cancelled, then shuts down within 5 seconds.
// It returns http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady changes the /health/ready answer.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.isReady.Load() {
		h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
}

func (h *HealthServer) handleChannels(w http.ResponseWriter, _ *http.Request) {
	resp := channelHealthResponse{Healthy: true, Channels: []ChannelStatus{}}
	if h.channels != nil {
		resp.Channels = append(resp.Channels, h.channels()...)
	}
	for _, c := range resp.Channels {
		if c.CircuitBreakerOpen {
			resp.Healthy = false
		}
	}

	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
