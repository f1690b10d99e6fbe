package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/middleware"
	"github.com/civicvoice/civicvoice-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ModerationHandler handles moderation queue requests
type ModerationHandler struct {
	queueSvc      *service.ModerationQueueService
	moderationSvc *service.ModerationService
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(queueSvc *service.ModerationQueueService, moderationSvc *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{queueSvc: queueSvc, moderationSvc: moderationSvc}
}

// Queue handles GET /api/v1/moderation/queue
// @Summary List the moderation queue
// @Description Comments awaiting review, highest priority first
// @Tags moderation
// @Produce json
// @Param priority query string false "Priority filter (high, medium, low)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /moderation/queue [get]
func (h *ModerationHandler) Queue(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	// maxQueueLimit must stay within the range ListPendingReview accepts,
	// or oversized requests silently fall back to the repository default.
	limit := parseLimit(c, 50, maxQueueLimit)

	opts := service.QueueOptions{
		Limit:    limit,
		Offset:   (page - 1) * limit,
		Priority: domain.QueuePriority(c.Query("priority")),
	}

	items, err := h.queueSvc.ListQueue(c.Request.Context(), opts)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load moderation queue", err)
		return
	}

	common.SuccessResponse(c, items, &common.Meta{Page: page, Limit: limit})
}

// Act handles POST /api/v1/moderation/comments/:id
// @Summary Approve or reject a comment
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param request body domain.ModerationActionRequest true "Action"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Security BearerAuth
// @Router /moderation/comments/{id} [post]
func (h *ModerationHandler) Act(c *gin.Context) {
	var req domain.ModerationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	commentID := c.Param("id")
	moderatorID := middleware.GetUserID(c)

	var err error
	if req.Action == "approve" {
		err = h.queueSvc.Approve(c.Request.Context(), commentID, moderatorID, req.Notes)
	} else {
		err = h.queueSvc.Reject(c.Request.Context(), commentID, moderatorID, req.Reason)
	}
	if err != nil {
		switch {
		case errors.Is(err, common.ErrCommentNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Comment not found", nil)
		case errors.Is(err, common.ErrCommentWithdrawn):
			common.ErrorResponse(c, http.StatusConflict, "Comment was withdrawn by its author", nil)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Moderation action failed", err)
		}
		return
	}

	common.SuccessResponse(c, gin.H{"action": req.Action, "comment_id": commentID}, nil)
}

const (
	maxQueueLimit   = 100
	maxHistoryLimit = 50
)

// parseLimit reads the limit query param, falling back to def when the
// value is missing, invalid, or outside [1, max]
func parseLimit(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 || limit > max {
		return def
	}
	return limit
}

// bulkRequest is the bulk moderation payload
type bulkRequest struct {
	CommentIDs []string `json:"comment_ids" binding:"required,min=1,max=100"`
	Action     string   `json:"action" binding:"required,oneof=approve reject"`
	Reason     string   `json:"reason,omitempty" binding:"max=500"`
}

// Bulk handles POST /api/v1/moderation/bulk
// @Summary Bulk approve or reject comments
// @Description Applies one action to many comments; failures are counted, not fatal
// @Tags moderation
// @Accept json
// @Produce json
// @Param request body bulkRequest true "Bulk action"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /moderation/bulk [post]
func (h *ModerationHandler) Bulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.queueSvc.BulkModerate(c.Request.Context(), req.CommentIDs, middleware.GetUserID(c), req.Action, req.Reason)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Bulk moderation failed", err)
		return
	}

	common.SuccessResponse(c, result, nil)
}

// Stats handles GET /api/v1/moderation/stats
// @Summary Moderation queue statistics
// @Tags moderation
// @Produce json
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /moderation/stats [get]
func (h *ModerationHandler) Stats(c *gin.Context) {
	stats, err := h.queueSvc.Stats(c.Request.Context())
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load moderation statistics", err)
		return
	}
	common.SuccessResponse(c, stats, nil)
}

// History handles GET /api/v1/moderation/comments/:id/history
// @Summary Moderation history for one comment
// @Tags moderation
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /moderation/comments/{id}/history [get]
func (h *ModerationHandler) History(c *gin.Context) {
	entries, err := h.queueSvc.History(c.Param("id"), parseLimit(c, 50, maxHistoryLimit))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load moderation history", err)
		return
	}
	common.SuccessResponse(c, entries, nil)
}

// GetSettings handles GET /api/v1/moderation/settings
// @Summary Current moderation settings
// @Tags moderation
// @Produce json
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /moderation/settings [get]
func (h *ModerationHandler) GetSettings(c *gin.Context) {
	settings := h.moderationSvc.Settings()
	common.SuccessResponse(c, settings, nil)
}

// UpdateSettings handles PUT /api/v1/moderation/settings
// @Summary Update moderation settings
// @Tags moderation
// @Accept json
// @Produce json
// @Param request body domain.ModerationSettings true "Settings"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /moderation/settings [put]
func (h *ModerationHandler) UpdateSettings(c *gin.Context) {
	var settings domain.ModerationSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if settings.RiskThreshold < 0 || settings.RiskThreshold > 1 {
		common.ErrorResponse(c, http.StatusBadRequest, "Risk threshold must be between 0 and 1", nil)
		return
	}

	if err := h.moderationSvc.SaveSettings(settings, middleware.GetUserID(c)); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	common.SuccessResponse(c, settings, nil)
}
