package handler

import (
	"strconv"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/response"
	"github.com/gin-gonic/gin"
)

// PlacesHandler serves address suggestions for the input fields.
type PlacesHandler struct {
	service *application.PlannerService
}

// NewPlacesHandler creates a new PlacesHandler.
func NewPlacesHandler(service *application.PlannerService) *PlacesHandler {
	return &PlacesHandler{service: service}
}

// RegisterRoutes registers place suggestion routes.
func (h *PlacesHandler) RegisterRoutes(r *gin.RouterGroup) {
	places := r.Group("/api/v1/places")
	{
		places.GET("/autocomplete", h.Autocomplete)
	}
}

// Autocomplete handles GET /api/v1/places/autocomplete?input=&limit=.
func (h *PlacesHandler) Autocomplete(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	suggestions, err := h.service.SuggestPlaces(c.Request.Context(), c.Query("input"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, suggestions)
}
