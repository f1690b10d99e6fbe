package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CouncilHandler handles council sentiment views
type CouncilHandler struct {
	service *service.CouncilService
}

// NewCouncilHandler creates a new CouncilHandler
func NewCouncilHandler(service *service.CouncilService) *CouncilHandler {
	return &CouncilHandler{service: service}
}

// Dashboard handles GET /api/v1/council/meetings/:id/dashboard
// @Summary Sentiment dashboard for one meeting
// @Tags council
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /council/meetings/{id}/dashboard [get]
func (h *CouncilHandler) Dashboard(c *gin.Context) {
	dash, err := h.service.GetDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrMeetingNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Meeting not found", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to build dashboard", err)
		return
	}
	common.SuccessResponse(c, dash, nil)
}

// Export handles GET /api/v1/council/meetings/:id/export
// @Summary Export visible comments for one meeting
// @Description Streams CSV (default) or JSON of all VISIBLE comments
// @Tags council
// @Produce json
// @Param id path string true "Meeting ID"
// @Param format query string false "Format (csv, json)"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /council/meetings/{id}/export [get]
func (h *CouncilHandler) Export(c *gin.Context) {
	format := service.ExportCSV
	if c.Query("format") == "json" {
		format = service.ExportJSON
	}

	meetingID := c.Param("id")
	data, contentType, err := h.service.Export(meetingID, format)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to export comments", err)
		return
	}

	ext := "csv"
	if format == service.ExportJSON {
		ext = "json"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="comments-%s.%s"`, meetingID, ext))
	c.Data(http.StatusOK, contentType, data)
}
