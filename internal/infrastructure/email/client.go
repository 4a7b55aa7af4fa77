// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendLeadNotification(toEmail string, props templates.LeadNotificationProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService(apiKey, fromEmail string) (Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}

	if fromEmail == "" {
		fromEmail = "noreply@aldiyar.com"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  "Aldiyar",
	}, nil
}

// SendLeadNotification composes and sends the new-enquiry notification email.
func (c *ResendClient) SendLeadNotification(toEmail string, props templates.LeadNotificationProps) error {
	htmlContent := templates.GetLeadNotificationContent(props)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: fmt.Sprintf("New enquiry from %s", props.Name),
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send lead notification via Resend: %w", err)
	}

	return nil
}
