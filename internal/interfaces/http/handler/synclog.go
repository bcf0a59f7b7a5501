package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/syncbridge/backend/internal/application/sync"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
)

// ListLogsRequest holds the sync log list query parameters
type ListLogsRequest struct {
	Status     string `form:"status"`
	EntityType string `form:"entity_type"`
	SyncType   string `form:"sync_type"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
}

// SyncLogHandler serves the sync audit API
type SyncLogHandler struct {
	BaseHandler
	audit      *appsync.AuditService
	dispatcher *appsync.Dispatcher
}

// NewSyncLogHandler creates a new SyncLogHandler
func NewSyncLogHandler(audit *appsync.AuditService, dispatcher *appsync.Dispatcher) *SyncLogHandler {
	return &SyncLogHandler{
		audit:      audit,
		dispatcher: dispatcher,
	}
}

// RegisterRoutes registers sync log routes
func (h *SyncLogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	logs := rg.Group("/sync/logs")
	{
		logs.GET("", h.ListLogs)
		logs.GET("/:id", h.GetLog)
		logs.POST("/:id/retry", h.RetryLog)
	}
	rg.GET("/sync/stats", h.GetStats)
}

// ListLogs returns sync attempts matching the filter, newest first
func (h *SyncLogHandler) ListLogs(c *gin.Context) {
	var req ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := syncdomain.LogFilter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" {
		status := syncdomain.Status(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown status: "+req.Status)
			return
		}
		filter.Status = &status
	}
	if req.EntityType != "" {
		filter.EntityType = &req.EntityType
	}
	if req.SyncType != "" {
		syncType := syncdomain.Type(req.SyncType)
		if !syncType.IsValid() {
			h.BadRequest(c, "Unknown sync type: "+req.SyncType)
			return
		}
		filter.SyncType = &syncType
	}

	logs, err := h.audit.GetLogs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}

// GetLog returns a single sync attempt by id
func (h *SyncLogHandler) GetLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sync log id")
		return
	}

	log, err := h.audit.GetLog(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, log)
}

// RetryLog re-arms a failed sync attempt and re-dispatches it
func (h *SyncLogHandler) RetryLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sync log id")
		return
	}

	log, err := h.dispatcher.ManualRetry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, log)
}

// GetStats returns aggregate sync outcomes over a trailing window,
// defaulting to 24 hours
func (h *SyncLogHandler) GetStats(c *gin.Context) {
	window := 24 * time.Hour
	if raw := c.Query("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "Invalid window duration")
			return
		}
		window = parsed
	}

	stats, err := h.audit.GetStats(c.Request.Context(), window)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
