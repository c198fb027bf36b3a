package handler

import (
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/mapview"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const calculateErrorPrefix = "Route calculation failed"

// PlannerHandler handles HTTP requests for planner sessions.
type PlannerHandler struct {
	service *application.PlannerService
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(service *application.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: service}
}

// RegisterRoutes registers all planner session routes on the given router group.
func (h *PlannerHandler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/api/v1/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.CloseSession)
		sessions.PUT("/:id/form", h.UpdateForm)
		sessions.POST("/:id/destinations", h.AddDestination)
		sessions.DELETE("/:id/destinations/:fieldId", h.RemoveDestination)
		sessions.POST("/:id/route", h.Calculate)
		sessions.DELETE("/:id/route", h.ClearRoute)
		sessions.POST("/:id/center", h.CenterMap)
		sessions.POST("/:id/resize", h.Resize)
	}
}

// CreateSession handles POST /api/v1/sessions.
func (h *PlannerHandler) CreateSession(c *gin.Context) {
	result, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *PlannerHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CloseSession handles DELETE /api/v1/sessions/:id.
func (h *PlannerHandler) CloseSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.service.CloseSession(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// UpdateForm handles PUT /api/v1/sessions/:id/form.
func (h *PlannerHandler) UpdateForm(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req application.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateForm(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddDestination handles POST /api/v1/sessions/:id/destinations.
func (h *PlannerHandler) AddDestination(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.AddDestination(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// RemoveDestination handles DELETE /api/v1/sessions/:id/destinations/:fieldId.
func (h *PlannerHandler) RemoveDestination(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.RemoveDestination(c.Request.Context(), id, c.Param("fieldId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Calculate handles POST /api/v1/sessions/:id/route.
// Routing failures carry the "Route calculation failed" prefix; input errors are shown as is.
func (h *PlannerHandler) Calculate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.Calculate(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		if application.IsRouteError(err) {
			response.ErrorWithPrefix(c, calculateErrorPrefix, err)
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ClearRoute handles DELETE /api/v1/sessions/:id/route.
func (h *PlannerHandler) ClearRoute(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.ClearRoute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CenterMap handles POST /api/v1/sessions/:id/center.
func (h *PlannerHandler) CenterMap(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.CenterMap(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Resize handles POST /api/v1/sessions/:id/resize.
func (h *PlannerHandler) Resize(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var size mapview.Size
	if err := c.ShouldBindJSON(&size); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Resize(c.Request.Context(), id, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}
