package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyTimeout = 2 * time.Second

// Pinger is a storage backend that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the probes under /health.
type HealthHandler struct {
	store   Pinger
	storage string
	version string
	started time.Time
}

// NewHealthHandler creates a health handler. storage names the backend
// reported by Info.
func NewHealthHandler(store Pinger, storage, version string) *HealthHandler {
	return &HealthHandler{store: store, storage: storage, version: version, started: time.Now()}
}

// Live answers while the process runs.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready answers 503 while the storage backend cannot be reached.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	status, check, code := "ok", "healthy", http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		status, check, code = "error", "unhealthy: "+err.Error(), http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": map[string]string{"storage": check},
	})
}

// Info reports build and runtime facts.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":            "pharmadesk",
		"version":        h.version,
		"storage":        h.storage,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
