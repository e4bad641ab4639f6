package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/projecttime-api/internal/database"
	"github.com/yukikurage/projecttime-api/internal/events"
	"github.com/yukikurage/projecttime-api/internal/logger"
	"gorm.io/gorm"
)

// connectionChecker is implemented by publishers backed by a broker
type connectionChecker interface {
	IsConnected() bool
}

type HealthHandler struct {
	db        *gorm.DB
	publisher events.Publisher
}

func NewHealthHandler(db *gorm.DB, publisher events.Publisher) *HealthHandler {
	return &HealthHandler{db: db, publisher: publisher}
}

// Health reports overall status including the database connection
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK
	if err := database.Ping(h.db); err != nil {
		logger.FromContext(c.Request.Context()).Warn("Database ping failed", "error", err)
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"message":  "ProjectTime API is running",
		"database": dbStatus,
	})
}

// Livez only reports that the process is serving requests
func (h *HealthHandler) Livez(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz fails while the database or, when configured, the event broker is
// unreachable
func (h *HealthHandler) Readyz(c *gin.Context) {
	if err := database.Ping(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "database": "unavailable"})
		return
	}

	broker := "disabled"
	if checker, ok := h.publisher.(connectionChecker); ok {
		if !checker.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "events": "disconnected"})
			return
		}
		broker = "connected"
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "events": broker})
}
