package services

import (
	"context"
	"fmt"
	"log"

	"eventticketing/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendRegistrationConfirmed sends the registration confirmation email,
// including the ticket code, using the "registration_confirmed" template.
func (s *emailService) SendRegistrationConfirmed(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("registration_confirmed", data)
	if err != nil {
		return fmt.Errorf("failed to render registration_confirmed template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	log.Printf("[EMAIL] Registration confirmation sent to %s", data.Email)
	return nil
}

// SendRegistrationCancelled sends the cancellation notice using the
// "registration_cancelled" template.
func (s *emailService) SendRegistrationCancelled(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("registration_cancelled", data)
	if err != nil {
		return fmt.Errorf("failed to render registration_cancelled template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send cancellation email: %w", err)
	}
	log.Printf("[EMAIL] Registration cancellation sent to %s", data.Email)
	return nil
}
