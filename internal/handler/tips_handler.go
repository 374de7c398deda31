package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/service"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
	"github.com/cleanoyo/wasteup-api/pkg/response"
)

// TipsHandler serves disposal guidance per waste type.
type TipsHandler struct {
	service *service.TipsService
}

// NewTipsHandler creates a new tips handler.
func NewTipsHandler(svc *service.TipsService) *TipsHandler {
	return &TipsHandler{service: svc}
}

// Tip godoc
// @Summary Disposal tip
// @Description Returns a short disposal tip for the given waste type
// @Tags Tips
// @Produce json
// @Param waste_type query string true "Waste type"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tips [get]
func (h *TipsHandler) Tip(c *gin.Context) {
	wasteType := models.WasteType(c.Query("waste_type"))
	if wasteType == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "waste_type is required"))
		return
	}

	tip, err := h.service.Tip(c.Request.Context(), wasteType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"waste_type": wasteType, "tip": tip}, nil)
}
