package handler

import (
	"errors"
	"net/http"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles OTP login requests
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// SendOTP handles POST /api/v1/auth/otp
// @Summary Request a login code
// @Description Sends a six digit login code to the given email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.SendOTPRequest true "Email"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 429 {object} common.APIResponse
// @Router /auth/otp [post]
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req domain.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.service.SendOTP(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrRateLimitExceeded) {
			common.ErrorResponse(c, http.StatusTooManyRequests, "Too many code requests. Try again later", nil)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to send login code", err)
		return
	}

	common.SuccessResponse(c, gin.H{"sent": true}, nil)
}

// VerifyOTP handles POST /api/v1/auth/otp/verify
// @Summary Verify a login code
// @Description Exchanges a valid code for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.VerifyOTPRequest true "Email and code"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req domain.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidOTP):
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired code", nil)
		case errors.Is(err, common.ErrTooManyAttempts):
			common.ErrorResponse(c, http.StatusTooManyRequests, "Too many attempts. Request a new code", nil)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to verify code", err)
		}
		return
	}

	common.SuccessResponse(c, resp, nil)
}
