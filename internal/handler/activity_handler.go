package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/service"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
	"github.com/cleanoyo/wasteup-api/pkg/response"
)

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary List activity log entries
// @Description Admins see all entries; other roles see their own
// @Tags Activity
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param action query string false "Action filter"
// @Success 200 {object} response.Envelope
// @Router /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.ActivityFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	filter.Action = c.Query("action")

	if claims.Role == models.RoleAdmin {
		filter.UserID = c.Query("user_id")
	} else {
		filter.UserID = claims.UserID
	}

	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, pagination)
}
