package queue

import (
	"encoding/json"
	"errors"
	"time"

	"finboard/internal/uuid"
)

// MailJob asks the mail worker to render and send one template.
type MailJob struct {
	ID          string            `json:"id"`
	TemplateKey string            `json:"template_key"`
	To          string            `json:"to"`
	Variables   map[string]string `json:"variables"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewMailJob creates a job for templateKey addressed to to.
func NewMailJob(templateKey, to string, vars map[string]string) *MailJob {
	return &MailJob{
		ID:          uuid.New(),
		TemplateKey: templateKey,
		To:          to,
		Variables:   vars,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the job to JSON bytes
func (j *MailJob) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// MailJobFromJSON decodes a job and checks it is addressed and names a template.
func MailJobFromJSON(data []byte) (*MailJob, error) {
	var job MailJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	if job.TemplateKey == "" || job.To == "" {
		return nil, errors.New("mail job requires template_key and to")
	}
	return &job, nil
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks a handler error as not worth retrying; the consumer drops
// the message instead of requeueing it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
