package handler

import (
	"strconv"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/response"
	"github.com/gin-gonic/gin"
)

// HistoryHandler handles HTTP requests for the route history.
type HistoryHandler struct {
	service *application.PlannerService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(service *application.PlannerService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// RegisterRoutes registers history routes.
func (h *HistoryHandler) RegisterRoutes(r *gin.RouterGroup) {
	routes := r.Group("/api/v1/routes")
	{
		routes.GET("/history", h.ListHistory)
		routes.GET("/stats", h.Stats)
	}
}

// ListHistory handles GET /api/v1/routes/history.
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.service.ListHistory(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// Stats handles GET /api/v1/routes/stats.
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.service.HistoryStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
