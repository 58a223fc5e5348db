package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finboard/internal/services"
)

// AdminHandler handles the administrator-only email and statistics endpoints.
// Routes are expected behind middleware.RequireAdmin.
type AdminHandler struct {
	emailService services.EmailServicer
	adminService services.AdminServicer
	auditService services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(emailService services.EmailServicer, adminService services.AdminServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{emailService: emailService, adminService: adminService, auditService: auditService}
}

// EmailConfigRequest represents the email settings payload
type EmailConfigRequest struct {
	BrevoAPIKey string `json:"brevo_api_key" binding:"required"`
	SenderName  string `json:"brevo_sender_name" binding:"required,max=100"`
	SenderEmail string `json:"brevo_sender_email" binding:"required,email"`
	SMTPEnabled *bool  `json:"smtp_enabled"`
}

// TemplateRequest creates a template when id is empty and updates it otherwise
type TemplateRequest struct {
	ID                 string   `json:"id" binding:"omitempty,uuid"`
	TemplateKey        string   `json:"template_key" binding:"required,template_key"`
	TemplateName       string   `json:"template_name" binding:"required,max=100"`
	Subject            string   `json:"subject" binding:"required,max=255"`
	HTMLContent        string   `json:"html_content"`
	TextContent        string   `json:"text_content"`
	AvailableVariables []string `json:"available_variables"`
	IsActive           *bool    `json:"is_active"`
}

// TestEmailRequest represents the test email payload
type TestEmailRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Template string `json:"template" binding:"omitempty,template_key"`
}

// GetEmailConfig returns the email settings
// @Summary     Get email settings
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.EmailSettings
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator access required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/email-config [get]
func (h *AdminHandler) GetEmailConfig(c *gin.Context) {
	cfg, err := h.emailService.GetConfig()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// UpdateEmailConfig saves the email settings
// @Summary     Update email settings
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body EmailConfigRequest true "Email settings"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator access required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/email-config [put]
func (h *AdminHandler) UpdateEmailConfig(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req EmailConfigRequest
	if !bindJSON(c, &req) {
		return
	}

	enabled := true
	if req.SMTPEnabled != nil {
		enabled = *req.SMTPEnabled
	}

	err = h.emailService.UpdateConfig(services.EmailSettings{
		BrevoAPIKey: req.BrevoAPIKey,
		SenderName:  req.SenderName,
		SenderEmail: req.SenderEmail,
		SMTPEnabled: enabled,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	// The API key itself is never written to the audit log.
	h.auditService.Log(userID, "UPDATE_EMAIL_CONFIG", "email_config", "", c.ClientIP(),
		map[string]interface{}{"sender_email": req.SenderEmail, "smtp_enabled": enabled})

	c.JSON(http.StatusOK, MessageResponse{Message: "Email configuration saved"})
}

// GetTemplates lists the email templates
// @Summary     List email templates
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.EmailTemplate
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator access required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/email-templates [get]
func (h *AdminHandler) GetTemplates(c *gin.Context) {
	templates, err := h.emailService.ListTemplates()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// SaveTemplate creates or updates an email template
// @Summary     Save email template
// @Description Create a template when id is omitted, update it otherwise
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TemplateRequest true "Template"
// @Success     200 {object} models.EmailTemplate "Template updated"
// @Success     201 {object} models.EmailTemplate "Template created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator access required"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     409 {object} ErrorResponse "Template key already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/email-templates [post]
func (h *AdminHandler) SaveTemplate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	tmpl, err := h.emailService.SaveTemplate(services.TemplateInput{
		ID:                 req.ID,
		TemplateKey:        req.TemplateKey,
		TemplateName:       req.TemplateName,
		Subject:            req.Subject,
		HTMLContent:        req.HTMLContent,
		TextContent:        req.TextContent,
		AvailableVariables: req.AvailableVariables,
		IsActive:           active,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	action, status := "UPDATE_EMAIL_TEMPLATE", http.StatusOK
	if req.ID == "" {
		action, status = "CREATE_EMAIL_TEMPLATE", http.StatusCreated
	}
	h.auditService.Log(userID, action, "email_template", tmpl.ID, c.ClientIP(),
		map[string]interface{}{"template_key": tmpl.TemplateKey, "is_active": tmpl.IsActive})

	c.JSON(status, gin.H{"template": tmpl})
}

// SendTestEmail sends a template filled with sample values
// @Summary     Send test email
// @Description Send a template (account_creation by default) with sample variables
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TestEmailRequest true "Recipient and template"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator access required"
// @Failure     404 {object} ErrorResponse "Template not found"
// @Failure     502 {object} ErrorResponse "Email delivery failed"
// @Failure     503 {object} ErrorResponse "Email not configured or disabled"
// @Router      /admin/test-email [post]
func (h *AdminHandler) SendTestEmail(c *gin.Context) {
	var req TestEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.emailService.SendTestEmail(c.Request.Context(), req.Email, req.Template); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Test email sent to " + req.Email})
}

// GetStats returns the admin dashboard counters
// @Summary     Admin statistics
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.AdminStats
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator access required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
