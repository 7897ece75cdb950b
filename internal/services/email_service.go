package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// EmailService sends transactional email through the Brevo API. Sends are
// fire-and-forget for the workflows that trigger them; callers log failures
// and move on.
type EmailService struct {
	client    *brevo.APIClient
	fromEmail string
	fromName  string
}

// NewEmailService creates a new Brevo email service instance
func NewEmailService(apiKey, fromEmail, fromName string) *EmailService {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)

	return &EmailService{
		client:    brevo.NewAPIClient(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Send delivers one email. attachmentURL is optional; when set, Brevo pulls
// the document from the URL and attaches it.
func (s *EmailService) Send(toEmail, toName, subject, htmlContent, attachmentURL string) error {
	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  s.fromName,
			Email: s.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: toEmail, Name: toName},
		},
		Subject:     subject,
		HtmlContent: htmlContent,
	}
	if attachmentURL != "" {
		email.Attachment = []brevo.SendSmtpEmailAttachment{
			{Url: attachmentURL},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, resp, err := s.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}

	return nil
}
