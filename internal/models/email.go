package models

import "time"

// Email configuration keys.
const (
	EmailConfigBrevoAPIKey      = "brevo_api_key"
	EmailConfigBrevoSenderName  = "brevo_sender_name"
	EmailConfigBrevoSenderEmail = "brevo_sender_email"
	EmailConfigSMTPEnabled      = "smtp_enabled"
)

// EmailConfig is a key/value row of the transactional email settings.
type EmailConfig struct {
	ConfigKey   string    `gorm:"primaryKey;size:100" json:"config_key"`
	ConfigValue string    `gorm:"type:text" json:"config_value"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EmailTemplate is an editable transactional email. Subject and bodies may
// contain {{variable}} placeholders.
type EmailTemplate struct {
	Base
	TemplateKey        string   `gorm:"uniqueIndex;size:100;not null" json:"template_key"`
	TemplateName       string   `gorm:"not null" json:"template_name"`
	Subject            string   `gorm:"not null" json:"subject"`
	HTMLContent        string   `gorm:"type:text" json:"html_content"`
	TextContent        string   `gorm:"type:text" json:"text_content"`
	AvailableVariables []string `gorm:"type:text;serializer:json" json:"available_variables"`
	IsActive           bool     `gorm:"not null" json:"is_active"`
}
