package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBrevoURL is the production Brevo API root.
const DefaultBrevoURL = "https://api.brevo.com/v3"

// Message is a fully rendered email ready to send.
type Message struct {
	SenderName  string
	SenderEmail string
	To          string
	Subject     string
	HTMLContent string
	TextContent string
}

// Sender delivers a message using the given provider API key.
type Sender interface {
	Send(ctx context.Context, apiKey string, msg Message) error
}

// APIError is returned when Brevo answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brevo: unexpected status %d: %s", e.StatusCode, e.Body)
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent,omitempty"`
}

// BrevoClient sends transactional emails through Brevo's SMTP API.
type BrevoClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBrevoClient creates a client for baseURL; a nil httpClient gets a
// client with a 10 second timeout.
func NewBrevoClient(baseURL string, httpClient *http.Client) *BrevoClient {
	if baseURL == "" {
		baseURL = DefaultBrevoURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &BrevoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Send posts msg to /smtp/email.
func (c *BrevoClient) Send(ctx context.Context, apiKey string, msg Message) error {
	payload, err := json.Marshal(brevoRequest{
		Sender:      brevoContact{Name: msg.SenderName, Email: msg.SenderEmail},
		To:          []brevoContact{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLContent,
		TextContent: msg.TextContent,
	})
	if err != nil {
		return fmt.Errorf("marshaling email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/smtp/email", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
