package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData holds data for registration lifecycle emails.
type RegistrationEmailData struct {
	Email      string
	EventName  string
	TicketCode string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmed(ctx context.Context, data *RegistrationEmailData) error
	SendRegistrationCancelled(ctx context.Context, data *RegistrationEmailData) error
}
