package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/service"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
	"github.com/cleanoyo/wasteup-api/pkg/response"
)

// DashboardHandler serves aggregate views for admins and route advice for operators.
type DashboardHandler struct {
	dashboard *service.DashboardService
	routes    *service.RouteService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard *service.DashboardService, routes *service.RouteService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, routes: routes}
}

// Overview godoc
// @Summary Dashboard overview
// @Description Status counts, zone summaries and recent activity (admin only)
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, overview, nil)
}

// RouteAdvice godoc
// @Summary Route advice
// @Description Suggested visiting order for an operator's open pickups
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /routes/advice [get]
func (h *DashboardHandler) RouteAdvice(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	operatorID := claims.UserID
	// Admins may inspect another operator's route.
	if claims.Role == models.RoleAdmin {
		if id := c.Query("operator_id"); id != "" {
			operatorID = id
		}
	}

	advice, err := h.routes.Advice(c.Request.Context(), operatorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, advice, nil)
}
