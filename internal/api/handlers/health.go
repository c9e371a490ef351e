package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GenerationHealthChecker reports whether the text-generation backend is
// currently usable (circuit closed).
type GenerationHealthChecker interface {
	IsHealthy() bool
}

// ConnectionCounter reports active websocket connections.
type ConnectionCounter interface {
	ConnectionCount() int
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	generator GenerationHealthChecker
	hub       ConnectionCounter
	logger    *logrus.Logger
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(generator GenerationHealthChecker, hub ConnectionCounter, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		generator: generator,
		hub:       hub,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// GetHealth reports service liveness plus collaborator status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	status := "healthy"
	if h.generator != nil && !h.generator.IsHealthy() {
		status = "degraded"
	}

	response := gin.H{
		"status":         status,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	}
	if h.hub != nil {
		response["ws_connections"] = h.hub.ConnectionCount()
	}

	c.JSON(http.StatusOK, response)
}

// GetReady reports readiness to serve traffic.
func (h *HealthHandler) GetReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
