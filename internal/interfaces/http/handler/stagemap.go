package handler

import (
	"github.com/gin-gonic/gin"

	appsync "github.com/syncbridge/backend/internal/application/sync"
)

// UpdateStageMappingRequest is the stage mapping override payload
type UpdateStageMappingRequest struct {
	Mapping map[string]string `json:"mapping" binding:"required"`
}

// StageMappingHandler serves the deal-stage to order-status mapping API
type StageMappingHandler struct {
	BaseHandler
	stageMap *appsync.StageMappingService
}

// NewStageMappingHandler creates a new StageMappingHandler
func NewStageMappingHandler(stageMap *appsync.StageMappingService) *StageMappingHandler {
	return &StageMappingHandler{stageMap: stageMap}
}

// RegisterRoutes registers stage mapping routes
func (h *StageMappingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	mapping := rg.Group("/sync/stage-mapping")
	{
		mapping.GET("", h.GetMapping)
		mapping.PUT("", h.UpdateMapping)
		mapping.DELETE("", h.ResetMapping)
	}
}

// GetMapping returns the effective stage mapping
func (h *StageMappingHandler) GetMapping(c *gin.Context) {
	h.Success(c, appsync.StageMappingResponse{Mapping: h.stageMap.Mapping()})
}

// UpdateMapping replaces the persisted override set
func (h *StageMappingHandler) UpdateMapping(c *gin.Context) {
	var req UpdateStageMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.stageMap.UpdateMapping(c.Request.Context(), req.Mapping); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appsync.StageMappingResponse{Mapping: h.stageMap.Mapping()})
}

// ResetMapping removes the overrides and restores the built-in defaults
func (h *StageMappingHandler) ResetMapping(c *gin.Context) {
	if err := h.stageMap.ResetToDefaults(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appsync.StageMappingResponse{Mapping: h.stageMap.Mapping()})
}
