package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/middleware"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CommentHandler handles comment requests
type CommentHandler struct {
	service *service.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service *service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create handles POST /api/v1/comments
// @Summary Submit a comment
// @Description Submits a comment on one or more agenda items; the text runs through the moderation pipeline before publication
// @Tags comments
// @Accept json
// @Produce json
// @Param request body domain.CreateCommentRequest true "Comment"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 429 {object} common.APIResponse
// @Security BearerAuth
// @Router /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Login required", nil)
		return
	}

	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	comment, err := h.service.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrMeetingNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Meeting not found", nil)
		case errors.Is(err, common.ErrAgendaItemNotFound):
			common.ErrorResponse(c, http.StatusBadRequest, "One or more agenda items do not exist", nil)
		case errors.Is(err, common.ErrCommentsClosed):
			common.ErrorResponse(c, http.StatusBadRequest, "Comments are closed for this item", nil)
		case errors.Is(err, common.ErrRateLimitExceeded):
			common.ErrorResponse(c, http.StatusTooManyRequests, "Daily comment limit reached", nil)
		case errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid stance", nil)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to submit comment", err)
		}
		return
	}

	middleware.ObserveModerationRun(string(comment.Visibility))
	common.CreatedResponse(c, comment)
}

// List handles GET /api/v1/comments
// @Summary List comments
// @Description Lists comments; residents see only VISIBLE ones
// @Tags comments
// @Produce json
// @Param meeting_id query string false "Meeting filter"
// @Param agenda_item_id query string false "Agenda item filter"
// @Param stance query string false "Stance filter"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	filter := repository.CommentFilter{
		MeetingID:    c.Query("meeting_id"),
		AgendaItemID: c.Query("agenda_item_id"),
		Stance:       domain.CommentStance(c.Query("stance")),
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}

	comments, total, err := h.service.List(filter, middleware.GetUserRole(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list comments", err)
		return
	}

	common.SuccessResponse(c, comments, &common.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Get handles GET /api/v1/comments/:id
// @Summary Get one comment
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /comments/{id} [get]
func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.service.Get(c.Param("id"), middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		if errors.Is(err, common.ErrCommentNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Comment not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load comment", err)
		return
	}
	common.SuccessResponse(c, comment, nil)
}

// Withdraw handles DELETE /api/v1/comments/:id
// @Summary Withdraw a comment
// @Description Permanently removes the caller's own comment from public view
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (h *CommentHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Login required", nil)
		return
	}

	err := h.service.Withdraw(c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrCommentNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Comment not found", nil)
		case errors.Is(err, common.ErrUnauthorized):
			common.ErrorResponse(c, http.StatusForbidden, "You can only withdraw your own comments", nil)
		case errors.Is(err, common.ErrCommentWithdrawn):
			common.ErrorResponse(c, http.StatusConflict, "Comment is already withdrawn", nil)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to withdraw comment", err)
		}
		return
	}

	common.SuccessResponse(c, gin.H{"withdrawn": true}, nil)
}
