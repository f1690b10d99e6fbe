package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// MeetingHandler handles meeting requests
type MeetingHandler struct {
	service *service.MeetingService
}

// NewMeetingHandler creates a new MeetingHandler
func NewMeetingHandler(service *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{service: service}
}

// List handles GET /api/v1/meetings
// @Summary List meetings
// @Tags meetings
// @Produce json
// @Param status query string false "Status filter (UPCOMING, ACTIVE, ENDED, CANCELLED)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} common.APIResponse
// @Router /meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	status := domain.MeetingStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid meeting status", nil)
		return
	}

	meetings, total, err := h.service.List(c.Request.Context(), status, page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list meetings", err)
		return
	}

	common.SuccessResponse(c, meetings, &common.Meta{Page: page, Limit: limit, Total: total})
}

// Get handles GET /api/v1/meetings/:id
// @Summary Get one meeting with its agenda
// @Tags meetings
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /meetings/{id} [get]
func (h *MeetingHandler) Get(c *gin.Context) {
	meeting, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrMeetingNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Meeting not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load meeting", err)
		return
	}
	common.SuccessResponse(c, meeting, nil)
}

// Create handles POST /api/v1/meetings
// @Summary Create a meeting
// @Description Staff only
// @Tags meetings
// @Accept json
// @Produce json
// @Param request body domain.CreateMeetingRequest true "Meeting"
// @Success 201 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /meetings [post]
func (h *MeetingHandler) Create(c *gin.Context) {
	var req domain.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	meeting, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create meeting", err)
		return
	}
	common.CreatedResponse(c, meeting)
}

// Update handles PATCH /api/v1/meetings/:id
// @Summary Update a meeting
// @Description Staff only; partial update
// @Tags meetings
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param request body domain.UpdateMeetingRequest true "Fields to change"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /meetings/{id} [patch]
func (h *MeetingHandler) Update(c *gin.Context) {
	var req domain.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	meeting, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, common.ErrMeetingNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Meeting not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to update meeting", err)
		return
	}
	common.SuccessResponse(c, meeting, nil)
}
