package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"finboard/internal/mail"
	"finboard/internal/models"
	"finboard/internal/queue"
	"finboard/internal/testutil"
)

type sentMail struct {
	apiKey string
	msg    mail.Message
}

// fakeSender records every message instead of calling Brevo.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, apiKey string, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{apiKey: apiKey, msg: msg})
	return nil
}

func (f *fakeSender) messages() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type fakePublisher struct {
	jobs []*queue.MailJob
	err  error
}

func (p *fakePublisher) PublishMail(_ context.Context, job *queue.MailJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

var errBrevoDown = errors.New("brevo unavailable")

// configureEmail stores a complete, enabled email configuration and seeds
// the default templates.
func configureEmail(t *testing.T, db *gorm.DB, svc EmailServicer) {
	t.Helper()
	testutil.SetTestEmailConfig(t, db, map[string]string{
		models.EmailConfigBrevoAPIKey:      "xkeysib-test",
		models.EmailConfigBrevoSenderName:  "Finboard",
		models.EmailConfigBrevoSenderEmail: "no-reply@finboard.test",
		models.EmailConfigSMTPEnabled:      "true",
	})
	testutil.AssertNoError(t, svc.EnsureDefaultTemplates())
}

func newTestEmailService(t *testing.T, db *gorm.DB, sender mail.Sender, publisher MailPublisher, opts ...EmailOption) EmailServicer {
	t.Helper()
	svc, err := NewEmailService(db, sender, publisher, opts...)
	testutil.AssertNoError(t, err)
	return svc
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}
