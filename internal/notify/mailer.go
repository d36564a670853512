// Package notify delivers best-effort transactional email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

var ErrNotConfigured = errors.New("smtp settings not configured")

type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends a single message. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridError struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"errors"`
}

// SendGridMailer posts to the SendGrid v3 mail API. The API key and sender
// identity are read from the smtp admin settings on every send so changes
// made through the admin API apply without a restart.
type SendGridMailer struct {
	httpClient    *resty.Client
	settings      repository.SettingsRepository
	defaultSender string
	defaultName   string
}

func NewSendGridMailer(baseURL string, settings repository.SettingsRepository, defaultSender, defaultName string) *SendGridMailer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &SendGridMailer{
		httpClient:    client,
		settings:      settings,
		defaultSender: defaultSender,
		defaultName:   defaultName,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	smtp, err := m.settings.Get(ctx, models.SettingSMTP)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotConfigured
		}
		return fmt.Errorf("load smtp settings: %w", err)
	}
	if smtp.SendGridAPIKey == nil || *smtp.SendGridAPIKey == "" {
		return ErrNotConfigured
	}

	from := sendGridAddress{Email: m.defaultSender, Name: m.defaultName}
	if smtp.SenderEmail != nil && *smtp.SenderEmail != "" {
		from.Email = *smtp.SenderEmail
	}
	if smtp.SenderName != nil && *smtp.SenderName != "" {
		from.Name = *smtp.SenderName
	}

	body := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: msg.To, Name: msg.ToName}}}},
		From:             from,
		Subject:          msg.Subject,
	}
	if msg.Text != "" {
		body.Content = append(body.Content, sendGridContent{Type: "text/plain", Value: msg.Text})
	}
	body.Content = append(body.Content, sendGridContent{Type: "text/html", Value: msg.HTML})

	var apiErr sendGridError
	resp, err := m.httpClient.R().
		SetContext(ctx).
		SetAuthToken(*smtp.SendGridAPIKey).
		SetBody(body).
		SetError(&apiErr).
		Post("/v3/mail/send")
	if err != nil {
		return fmt.Errorf("failed to call SendGrid API: %w", err)
	}
	if resp.IsError() {
		detail := resp.Status()
		if len(apiErr.Errors) > 0 {
			detail = apiErr.Errors[0].Message
		}
		return fmt.Errorf("SendGrid API error: %s (status: %d)", detail, resp.StatusCode())
	}
	return nil
}
