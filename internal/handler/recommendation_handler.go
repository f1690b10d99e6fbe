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

// RecommendationHandler handles ideas forum requests
type RecommendationHandler struct {
	service *service.RecommendationService
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(service *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// Create handles POST /api/v1/recommendations
// @Summary Submit a proposal
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body domain.CreateRecommendationRequest true "Proposal"
// @Success 201 {object} common.APIResponse
// @Failure 429 {object} common.APIResponse
// @Security BearerAuth
// @Router /recommendations [post]
func (h *RecommendationHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Login required", nil)
		return
	}

	var req domain.CreateRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, common.ErrRateLimitExceeded) {
			common.ErrorResponse(c, http.StatusTooManyRequests, "Weekly proposal limit reached", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to submit proposal", err)
		return
	}
	common.CreatedResponse(c, rec)
}

// List handles GET /api/v1/recommendations
// @Summary List proposals
// @Tags recommendations
// @Produce json
// @Param sort query string false "Sort (hot, new, top)"
// @Param tag query string false "Tag filter"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} common.APIResponse
// @Router /recommendations [get]
func (h *RecommendationHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	sort := c.DefaultQuery("sort", "hot")

	recs, total, err := h.service.List(c.Request.Context(), sort, c.Query("tag"), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list proposals", err)
		return
	}

	common.SuccessResponse(c, recs, &common.Meta{Page: page, Limit: limit, Total: total})
}

// Get handles GET /api/v1/recommendations/:id
// @Summary Get one proposal
// @Tags recommendations
// @Produce json
// @Param id path string true "Recommendation ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /recommendations/{id} [get]
func (h *RecommendationHandler) Get(c *gin.Context) {
	rec, err := h.service.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrRecommendationNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Proposal not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load proposal", err)
		return
	}
	common.SuccessResponse(c, rec, nil)
}

// Vote handles POST /api/v1/recommendations/vote
// @Summary Vote on a proposal
// @Description Value 1 upvotes, -1 downvotes, 0 removes the caller's vote
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body domain.VoteRequest true "Vote"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /recommendations/vote [post]
func (h *RecommendationHandler) Vote(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Login required", nil)
		return
	}

	var req domain.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.service.Vote(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, common.ErrRecommendationNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Proposal not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to record vote", err)
		return
	}
	common.SuccessResponse(c, rec, nil)
}
