package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/logger"
)

type sendgridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendgridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendgridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendgridEmailService) SendAlertDigest(ctx context.Context, recipient string, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	subject := fmt.Sprintf("Fleet alerts: %d item(s) need attention", len(alerts))
	plain, htmlBody := renderAlertDigest(alerts)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", recipient)
	message := mail.NewSingleEmail(from, subject, to, plain, htmlBody)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send alert digest: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.Info("alert digest sent", "recipient", recipient, "alerts", len(alerts))
	return nil
}

func renderAlertDigest(alerts []domain.Alert) (plain, htmlBody string) {
	var text, markup strings.Builder
	markup.WriteString("<html><body><h2>Fleet alerts</h2><ul>")
	for _, a := range alerts {
		fmt.Fprintf(&text, "[%s] %s: %s\n", strings.ToUpper(string(a.Priority)), a.Title, a.Message)
		fmt.Fprintf(&markup, "<li><strong>[%s]</strong> %s: %s</li>",
			strings.ToUpper(string(a.Priority)), html.EscapeString(a.Title), html.EscapeString(a.Message))
	}
	markup.WriteString("</ul></body></html>")
	return text.String(), markup.String()
}
