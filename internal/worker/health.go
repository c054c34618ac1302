package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pinger is the slice of the redis client the health server needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// HealthServer reports the file route worker's health over HTTP.
type HealthServer struct {
	port        int
	workerID    string
	redisClient Pinger
	rulesLoaded bool
	logger      *zap.Logger
	server      *http.Server
}

// NewHealthServer creates a health server for the worker. rulesLoaded
// records whether a default rule set was configured; workers without one
// depend on per-event routing configs and report that in /health.
func NewHealthServer(port int, workerID string, redisClient Pinger, rulesLoaded bool, logger *zap.Logger) *HealthServer {
	return &HealthServer{
		port:        port,
		workerID:    workerID,
		redisClient: redisClient,
		rulesLoaded: rulesLoaded,
		logger:      logger,
	}
}

// Start starts the health check server
func (hs *HealthServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)

	hs.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("starting health server",
		zap.String("worker_id", hs.workerID),
		zap.Int("port", hs.port),
	)

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			hs.logger.Error("health server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the health check server
func (hs *HealthServer) Stop() error {
	if hs.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hs.logger.Info("stopping health server", zap.String("worker_id", hs.workerID))
	return hs.server.Shutdown(ctx)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	WorkerID string            `json:"worker_id"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// handleHealth handles the /health endpoint
func (hs *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"rules": "per-event config",
	}
	if hs.rulesLoaded {
		checks["rules"] = "loaded"
	}

	// The event stream is unreachable without redis
	if err := hs.redisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = fmt.Sprintf("unhealthy: %v", err)
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			WorkerID: hs.workerID,
			Checks:   checks,
		})
		return
	}
	checks["redis"] = "healthy"

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		WorkerID: hs.workerID,
		Checks:   checks,
	})
}

// handleReady handles the /ready endpoint
func (hs *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	// The worker can only consume events once redis answers
	if err := hs.redisClient.Ping(ctx).Err(); err != nil {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "not ready",
			WorkerID: hs.workerID,
		})
		return
	}

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "ready",
		WorkerID: hs.workerID,
	})
}

// respondJSON writes a JSON response
func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hs.logger.Error("failed to encode response", zap.Error(err))
	}
}
