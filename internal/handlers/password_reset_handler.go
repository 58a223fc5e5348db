package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finboard/internal/services"
)

// resetRequestedMessage is returned whether or not the email is registered.
const resetRequestedMessage = "If the email is registered, a reset code has been sent"

// PasswordResetHandler handles the emailed reset code flow.
type PasswordResetHandler struct {
	resetService services.PasswordResetServicer
	auditService services.AuditServicer
}

// NewPasswordResetHandler creates a new PasswordResetHandler.
func NewPasswordResetHandler(resetService services.PasswordResetServicer, auditService services.AuditServicer) *PasswordResetHandler {
	return &PasswordResetHandler{resetService: resetService, auditService: auditService}
}

// RequestResetRequest represents the reset code request payload
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ConfirmResetRequest represents the reset confirmation payload
type ConfirmResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	ResetCode   string `json:"reset_code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=128"`
}

// RequestReset emails a reset code
// @Summary     Request a password reset code
// @Description Email a six digit code. The response is the same for unknown emails.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RequestResetRequest true "Account email"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     502 {object} ErrorResponse "Email delivery failed"
// @Failure     503 {object} ErrorResponse "Email not configured"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/password-reset [post]
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var req RequestResetRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: resetRequestedMessage})
}

// ConfirmReset sets a new password using a reset code
// @Summary     Reset password
// @Description Set a new password with the emailed code. Codes are single use and expire.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ConfirmResetRequest true "Email, code and new password"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input or invalid/expired code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/password-reset [put]
func (h *PasswordResetHandler) ConfirmReset(c *gin.Context) {
	var req ConfirmResetRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, err := h.resetService.ConfirmReset(req.Email, req.ResetCode, req.NewPassword)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RESET_PASSWORD", "user", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset"})
}
