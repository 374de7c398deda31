package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/service"
	"github.com/cleanoyo/wasteup-api/pkg/response"
)

// ExportHandler streams pickup history as downloadable files.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Pickups godoc
// @Summary Export pickup history
// @Description Download pickup history as CSV or PDF (admin only)
// @Tags Exports
// @Produce application/octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Param status query string false "Status filter"
// @Param zone query string false "Zone filter"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /exports/pickups [get]
func (h *ExportHandler) Pickups(c *gin.Context) {
	var filter models.PickupFilter
	if status := c.Query("status"); status != "" {
		s := models.PickupStatus(status)
		filter.Status = &s
	}
	filter.Zone = c.Query("zone")

	format := c.DefaultQuery("format", "csv")

	data, contentType, err := h.service.PickupHistory(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("pickups_%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(200, contentType, data)
}
