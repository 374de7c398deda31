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

// PickupHandler exposes the request lifecycle endpoints.
type PickupHandler struct {
	service *service.PickupService
}

// NewPickupHandler creates a new pickup handler.
func NewPickupHandler(svc *service.PickupService) *PickupHandler {
	return &PickupHandler{service: svc}
}

// Create godoc
// @Summary Create pickup request
// @Description Create a new pickup request; operators may submit manual entries for residents
// @Tags Pickups
// @Accept json
// @Produce json
// @Param payload body service.CreatePickupRequest true "Pickup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [post]
func (h *PickupHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreatePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// UpdateStatus godoc
// @Summary Transition pickup status
// @Description Move a request along the lifecycle; re-submitting the current status is a no-op
// @Tags Pickups
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body updateStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/status [patch]
func (h *PickupHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	request, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), claims.UserID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}

type updateStatusRequest struct {
	Status models.PickupStatus `json:"status" binding:"required"`
}

// List godoc
// @Summary List pickup requests
// @Description Residents see their own requests, operators their assignments, admins everything
// @Tags Pickups
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Status filter"
// @Param zone query string false "Zone filter"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *PickupHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.PickupFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	if status := c.Query("status"); status != "" {
		s := models.PickupStatus(status)
		filter.Status = &s
	}
	filter.Zone = c.Query("zone")

	requests, pagination, err := h.service.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get pickup request
// @Tags Pickups
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *PickupHandler) Get(c *gin.Context) {
	request, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, request, nil)
}
