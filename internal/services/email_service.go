package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finboard/internal/database"
	apperrors "finboard/internal/errors"
	"finboard/internal/logger"
	"finboard/internal/mail"
	"finboard/internal/models"
	"finboard/internal/queue"
)

const (
	configCacheKey      = "email:config"
	templateCachePrefix = "email:template:"

	// DefaultEmailCacheTTL bounds how long another process's config or
	// template change can go unseen.
	DefaultEmailCacheTTL = 30 * time.Second
)

type emailService struct {
	db        *gorm.DB
	sender    mail.Sender
	publisher MailPublisher
	cache     *ristretto.Cache[string, any]
	cacheTTL  time.Duration
}

// EmailOption configures NewEmailService.
type EmailOption func(*emailService)

// WithCacheTTL sets how long config and templates are cached. A ttl of zero
// or less disables caching, so every send reads the database.
func WithCacheTTL(ttl time.Duration) EmailOption {
	return func(s *emailService) { s.cacheTTL = ttl }
}

// NewEmailService creates a new EmailServicer. publisher may be nil, in which
// case every email is delivered inline.
func NewEmailService(db *gorm.DB, sender mail.Sender, publisher MailPublisher, opts ...EmailOption) (EmailServicer, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters:        1000,
		MaxCost:            100,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating email cache: %w", err)
	}
	s := &emailService{db: db, sender: sender, publisher: publisher, cache: cache, cacheTTL: DefaultEmailCacheTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *emailService) cacheGet(key string) (any, bool) {
	if s.cacheTTL <= 0 {
		return nil, false
	}
	return s.cache.Get(key)
}

// cacheSet stores v with the configured TTL so entries populated before a
// concurrent Del still expire.
func (s *emailService) cacheSet(key string, v any) {
	if s.cacheTTL <= 0 {
		return
	}
	s.cache.SetWithTTL(key, v, 1, s.cacheTTL)
	s.cache.Wait()
}

// configValues returns the raw key/value configuration rows.
func (s *emailService) configValues() (map[string]string, error) {
	if v, ok := s.cacheGet(configCacheKey); ok {
		if values, ok := v.(map[string]string); ok {
			return values, nil
		}
	}

	var rows []models.EmailConfig
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.ConfigKey] = r.ConfigValue
	}

	s.cacheSet(configCacheKey, values)
	return values, nil
}

// smtpEnabled treats a missing flag as enabled, matching what GetConfig reports.
func smtpEnabled(values map[string]string) bool {
	v, ok := values[models.EmailConfigSMTPEnabled]
	return !ok || v == "true"
}

// GetConfig returns the email settings with defaults for missing keys.
func (s *emailService) GetConfig() (*EmailSettings, error) {
	values, err := s.configValues()
	if err != nil {
		return nil, err
	}
	return &EmailSettings{
		BrevoAPIKey: values[models.EmailConfigBrevoAPIKey],
		SenderName:  values[models.EmailConfigBrevoSenderName],
		SenderEmail: values[models.EmailConfigBrevoSenderEmail],
		SMTPEnabled: smtpEnabled(values),
	}, nil
}

// UpdateConfig upserts all four settings in one transaction.
func (s *emailService) UpdateConfig(settings EmailSettings) error {
	settings.BrevoAPIKey = strings.TrimSpace(settings.BrevoAPIKey)
	settings.SenderName = strings.TrimSpace(settings.SenderName)
	settings.SenderEmail = strings.TrimSpace(settings.SenderEmail)
	if settings.BrevoAPIKey == "" || settings.SenderName == "" || settings.SenderEmail == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "API key, sender name and sender email are required")
	}

	rows := []models.EmailConfig{
		{ConfigKey: models.EmailConfigBrevoAPIKey, ConfigValue: settings.BrevoAPIKey},
		{ConfigKey: models.EmailConfigBrevoSenderName, ConfigValue: settings.SenderName},
		{ConfigKey: models.EmailConfigBrevoSenderEmail, ConfigValue: settings.SenderEmail},
		{ConfigKey: models.EmailConfigSMTPEnabled, ConfigValue: fmt.Sprintf("%t", settings.SMTPEnabled)},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"config_value", "updated_at"}),
		}).Create(&rows).Error
	})
	s.cache.Del(configCacheKey)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListTemplates returns every template ordered by name.
func (s *emailService) ListTemplates() ([]models.EmailTemplate, error) {
	templates := []models.EmailTemplate{}
	if err := s.db.Order("template_name ASC").Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return templates, nil
}

// SaveTemplate creates a template when in.ID is empty and updates it otherwise.
func (s *emailService) SaveTemplate(in TemplateInput) (*models.EmailTemplate, error) {
	in.TemplateKey = strings.TrimSpace(in.TemplateKey)
	in.TemplateName = strings.TrimSpace(in.TemplateName)
	if in.TemplateKey == "" || in.TemplateName == "" || strings.TrimSpace(in.Subject) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "template key, name and subject are required")
	}
	if in.AvailableVariables == nil {
		in.AvailableVariables = []string{}
	}

	if in.ID == "" {
		tmpl := &models.EmailTemplate{
			TemplateKey:        in.TemplateKey,
			TemplateName:       in.TemplateName,
			Subject:            in.Subject,
			HTMLContent:        in.HTMLContent,
			TextContent:        in.TextContent,
			AvailableVariables: in.AvailableVariables,
			IsActive:           in.IsActive,
		}
		if err := s.db.Create(tmpl).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateTemplate
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.cache.Del(templateCachePrefix + tmpl.TemplateKey)
		return tmpl, nil
	}

	var tmpl models.EmailTemplate
	if err := s.db.Where("id = ?", in.ID).First(&tmpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	oldKey := tmpl.TemplateKey

	tmpl.TemplateKey = in.TemplateKey
	tmpl.TemplateName = in.TemplateName
	tmpl.Subject = in.Subject
	tmpl.HTMLContent = in.HTMLContent
	tmpl.TextContent = in.TextContent
	tmpl.AvailableVariables = in.AvailableVariables
	tmpl.IsActive = in.IsActive

	// Select("*") so that IsActive=false is written too.
	err := s.db.Model(&tmpl).Select("*").Omit("id", "created_at").Updates(&tmpl).Error
	s.cache.Del(templateCachePrefix + oldKey)
	s.cache.Del(templateCachePrefix + tmpl.TemplateKey)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateTemplate
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tmpl, nil
}

// EnsureDefaultTemplates seeds the built-in templates that are missing.
// Existing templates are never overwritten.
func (s *emailService) EnsureDefaultTemplates() error {
	for _, def := range mail.DefaultTemplates() {
		tmpl := models.EmailTemplate{
			TemplateKey:        def.Key,
			TemplateName:       def.Name,
			Subject:            def.Content.Subject,
			HTMLContent:        def.Content.HTML,
			TextContent:        def.Content.Text,
			AvailableVariables: def.Variables,
			IsActive:           true,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "template_key"}},
			DoNothing: true,
		}).Create(&tmpl).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// activeTemplate loads an active template through the cache.
func (s *emailService) activeTemplate(key string) (models.EmailTemplate, error) {
	cacheKey := templateCachePrefix + key
	if v, ok := s.cacheGet(cacheKey); ok {
		if tmpl, ok := v.(models.EmailTemplate); ok {
			return tmpl, nil
		}
	}

	var tmpl models.EmailTemplate
	if err := s.db.Where("template_key = ? AND is_active = ?", key, true).First(&tmpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.EmailTemplate{}, apperrors.ErrTemplateNotFound
		}
		return models.EmailTemplate{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cacheSet(cacheKey, tmpl)
	return tmpl, nil
}

// SendTemplate renders the template with vars and delivers it inline.
func (s *emailService) SendTemplate(ctx context.Context, templateKey, to string, vars map[string]string) error {
	values, err := s.configValues()
	if err != nil {
		return err
	}
	apiKey := values[models.EmailConfigBrevoAPIKey]
	senderEmail := values[models.EmailConfigBrevoSenderEmail]
	if apiKey == "" || senderEmail == "" {
		return apperrors.ErrEmailNotConfigured
	}
	if !smtpEnabled(values) {
		return apperrors.ErrEmailDisabled
	}

	tmpl, err := s.activeTemplate(templateKey)
	if err != nil {
		return err
	}

	content := mail.Content{
		Subject: tmpl.Subject,
		HTML:    tmpl.HTMLContent,
		Text:    tmpl.TextContent,
	}.Render(vars)

	err = s.sender.Send(ctx, apiKey, mail.Message{
		SenderName:  values[models.EmailConfigBrevoSenderName],
		SenderEmail: senderEmail,
		To:          to,
		Subject:     content.Subject,
		HTMLContent: content.HTML,
		TextContent: content.Text,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrEmailDeliveryFailed, err)
	}

	logger.Named("email").Infow("email sent", "template", templateKey, "to", to)
	return nil
}

// SendAccountCreation queues the welcome email when a publisher is
// configured and falls back to inline delivery when publishing fails.
func (s *emailService) SendAccountCreation(ctx context.Context, user *models.User) error {
	vars := map[string]string{
		"userName":  user.Name,
		"userEmail": user.Email,
	}

	if s.publisher != nil {
		job := queue.NewMailJob(mail.TemplateAccountCreation, user.Email, vars)
		err := s.publisher.PublishMail(ctx, job)
		if err == nil {
			return nil
		}
		logger.Named("email").Warnw("queueing welcome email failed, sending inline", "user_id", user.ID, "error", err)
	}

	return s.SendTemplate(ctx, mail.TemplateAccountCreation, user.Email, vars)
}

// SendPasswordReset delivers the reset code inline so the caller can report
// delivery failures.
func (s *emailService) SendPasswordReset(ctx context.Context, user *models.User, code string, ttl time.Duration) error {
	return s.SendTemplate(ctx, mail.TemplatePasswordReset, user.Email, map[string]string{
		"userName":       user.Name,
		"userEmail":      user.Email,
		"resetCode":      code,
		"expirationTime": humanizeDuration(ttl),
	})
}

// SendTestEmail sends templateKey (account creation by default) to to, filled
// with sample values.
func (s *emailService) SendTestEmail(ctx context.Context, to, templateKey string) error {
	if templateKey == "" {
		templateKey = mail.TemplateAccountCreation
	}
	return s.SendTemplate(ctx, templateKey, to, mail.SampleVariables(to))
}

// humanizeDuration renders whole hours or minutes, e.g. "15 minutes".
func humanizeDuration(d time.Duration) string {
	plural := func(n int64, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int64(d/time.Hour), "hour")
	}
	return plural(int64(d/time.Minute), "minute")
}
