// Package worker turns queued mail jobs into deliveries.
package worker

import (
	"context"
	"errors"

	apperrors "finboard/internal/errors"
	"finboard/internal/queue"
	"finboard/internal/services"
)

// permanentCodes are failures a retry cannot fix until an admin acts.
var permanentCodes = map[string]bool{
	apperrors.ErrTemplateNotFound.Code:   true,
	apperrors.ErrEmailNotConfigured.Code: true,
	apperrors.ErrEmailDisabled.Code:      true,
}

// MailSender is the part of the email service the worker needs.
type MailSender interface {
	SendTemplate(ctx context.Context, templateKey, to string, vars map[string]string) error
}

var _ MailSender = services.EmailServicer(nil)

// NewMailHandler returns a queue handler that renders and sends each job.
// Configuration problems are reported as permanent so the job is dropped
// instead of requeued forever; delivery failures are retried.
func NewMailHandler(sender MailSender) func(context.Context, *queue.MailJob) error {
	return func(ctx context.Context, job *queue.MailJob) error {
		err := sender.SendTemplate(ctx, job.TemplateKey, job.To, job.Variables)
		if err == nil {
			return nil
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && permanentCodes[appErr.Code] {
			return queue.Permanent(err)
		}
		return err
	}
}
