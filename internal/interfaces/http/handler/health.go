package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syncbridge/backend/internal/infrastructure/persistence"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	db      *persistence.Database
	version string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *persistence.Database, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
	}
}

// RegisterRoutes registers health routes
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health reports service and database health
func (h *HealthHandler) Health(c *gin.Context) {
	overall, dbStatus := "ok", "up"
	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		overall, dbStatus = "degraded", "down"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.NewSuccessResponse(gin.H{
		"status":   overall,
		"version":  h.version,
		"database": dbStatus,
		"pool":     h.db.Pool(),
	}))
}
