package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/platemenu/platemenu/internal/observability"
)

type PasscodeMessage struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

//go:generate mockgen -source=mailer.go -destination=gomock/mailer_mock.go -package=gomock

// Mailer delivers a one-time passcode to its recipient. Implementations must
// be safe for concurrent use; delivery happens off the request goroutine.
type Mailer interface {
	SendPasscode(ctx context.Context, msg PasscodeMessage) error
}

// LogMailer writes the passcode to the structured log instead of sending
// mail. Development and test environments only.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasscode(ctx context.Context, msg PasscodeMessage) error {
	m.logger.InfoContext(ctx, "one-time passcode issued",
		"email", msg.Email,
		"code", msg.Code,
		"expires_at", msg.ExpiresAt,
	)
	observability.RecordMailDelivery(ctx, "log", "sent")
	return nil
}

const resendEndpoint = "https://api.resend.com/emails"

// ResendMailer sends passcodes through the Resend transactional email API.
type ResendMailer struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	from       string
}

func NewResendMailer(httpClient *http.Client, apiKey, from string) *ResendMailer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ResendMailer{
		httpClient: httpClient,
		endpoint:   resendEndpoint,
		apiKey:     apiKey,
		from:       from,
	}
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) SendPasscode(ctx context.Context, msg PasscodeMessage) error {
	payload := resendEmailRequest{
		From:    m.from,
		To:      []string{msg.Email},
		Subject: "Your login code",
		HTML:    fmt.Sprintf("<p>Your one-time login code is <strong>%s</strong>. It expires in %d minutes.</p>", msg.Code, int(time.Until(msg.ExpiresAt).Minutes())),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal resend payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		observability.RecordMailDelivery(ctx, "resend", "error")
		return fmt.Errorf("send passcode email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		observability.RecordMailDelivery(ctx, "resend", "error")
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, string(detail))
	}
	observability.RecordMailDelivery(ctx, "resend", "sent")
	return nil
}
