package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// EmailNotifier sends transactional email via the Brevo HTTP API v3.
// An unconfigured notifier reports every send as failed; the dispatch engine
// only logs those failures, so running without an API key is safe.
type EmailNotifier struct {
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
}

func NewEmailNotifier(apiKey, fromEmail, fromName string) *EmailNotifier {
	return &EmailNotifier{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

func (e *EmailNotifier) SendEmail(ctx context.Context, toEmail, subject, html string) error {
	if e.apiKey == "" {
		return fmt.Errorf("brevo client not configured, email to %s skipped", toEmail)
	}
	body := sendEmailReq{
		Sender:      map[string]string{"email": e.fromEmail, "name": e.fromName},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     subject,
		HtmlContent: html,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("brevo send failed status=%d", resp.StatusCode)
	}
	return nil
}
