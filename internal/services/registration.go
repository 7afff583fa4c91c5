package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"eventticketing/internal/clock"
	"eventticketing/internal/domain"
)

type registrationService struct {
	eventRepo domain.EventRepository
	regRepo   domain.RegistrationRepository
	tickets   domain.TicketService
	emails    domain.EmailService
	clk       clock.Clock
}

// NewRegistrationService creates a RegistrationService with the given
// repositories and collaborators.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	tickets domain.TicketService,
	emails domain.EmailService,
	clk clock.Clock,
) domain.RegistrationService {
	return &registrationService{
		eventRepo: eventRepo,
		regRepo:   regRepo,
		tickets:   tickets,
		emails:    emails,
		clk:       clk,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID string, actor domain.Actor) (*domain.RegistrationResult, error) {
	var result *domain.RegistrationResult
	var event *domain.Event

	err := s.regRepo.WithTx(ctx, func(txCtx context.Context) error {
		// The event row lock is the admission serialization point: two
		// concurrent registrations for the same event queue here, so the
		// count below can never race for the last slot.
		ev, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		event = ev

		existing, err := s.regRepo.GetByEventAndUser(txCtx, eventID, actor.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get registration: %w", err)
		}

		// Already active: a no-op duplicate, so retries stay safe. Never
		// double-admits and never double-issues a ticket.
		if existing != nil && existing.Status == domain.RegistrationStatusActive {
			ticket, terr := s.tickets.ValidForRegistration(txCtx, existing.ID)
			if terr != nil && !errors.Is(terr, domain.ErrNotFound) {
				return fmt.Errorf("get valid ticket: %w", terr)
			}
			result = &domain.RegistrationResult{
				Registration: existing,
				Ticket:       ticket,
				Outcome:      domain.OutcomeDuplicate,
			}
			return nil
		}

		now := s.clk.Now()
		count, err := s.regRepo.CountActive(txCtx, eventID)
		if err != nil {
			return fmt.Errorf("count active registrations: %w", err)
		}
		avail := domain.EvaluateAvailability(ev, count, now, actor.ID == ev.OwnerID)
		if !avail.Available {
			return &domain.EventNotAvailableError{Reason: avail.Reason}
		}

		if existing == nil {
			reg := domain.NewRegistration(eventID, actor.ID, now)
			if err := s.regRepo.Create(txCtx, reg); err != nil {
				return fmt.Errorf("create registration: %w", err)
			}
			ticket, err := s.tickets.IssueForRegistration(txCtx, reg)
			if err != nil {
				return err
			}
			result = &domain.RegistrationResult{
				Registration: reg,
				Ticket:       ticket,
				Outcome:      domain.OutcomeCreated,
			}
			return nil
		}

		// Cancelled row: reactivate through the same admission path,
		// counting against capacity at the moment of reactivation.
		if err := s.regRepo.UpdateStatus(txCtx, existing.ID, domain.RegistrationStatusActive, nil, now); err != nil {
			return fmt.Errorf("reactivate registration: %w", err)
		}
		existing.Status = domain.RegistrationStatusActive
		existing.CancelledAt = nil
		existing.UpdatedAt = now

		ticket, err := s.tickets.IssueForRegistration(txCtx, existing)
		if err != nil {
			return err
		}
		result = &domain.RegistrationResult{
			Registration: existing,
			Ticket:       ticket,
			Outcome:      domain.OutcomeReactivated,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome != domain.OutcomeDuplicate && actor.Email != "" {
		s.notify(event, result.Ticket, actor.Email, true)
	}
	return result, nil
}

func (s *registrationService) Cancel(ctx context.Context, registrationID string, actor domain.Actor) (*domain.Registration, error) {
	var reg *domain.Registration
	var eventID string

	err := s.regRepo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.regRepo.GetByIDForUpdate(txCtx, registrationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get registration: %w", err)
		}
		if existing.UserID != actor.ID {
			return domain.ErrForbidden
		}
		if existing.Status == domain.RegistrationStatusCancelled {
			return domain.ErrAlreadyCancelled
		}

		now := s.clk.Now()
		if err := s.regRepo.UpdateStatus(txCtx, existing.ID, domain.RegistrationStatusCancelled, &now, now); err != nil {
			return fmt.Errorf("cancel registration: %w", err)
		}
		// The live ticket dies with its registration, in the same unit of
		// work. This releases one capacity slot for the event.
		if err := s.tickets.CancelForRegistration(txCtx, existing.ID); err != nil {
			return err
		}
		existing.Status = domain.RegistrationStatusCancelled
		existing.CancelledAt = &now
		existing.UpdatedAt = now
		reg = existing
		eventID = existing.EventID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if actor.Email != "" {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err == nil {
			s.notify(event, nil, actor.Email, false)
		}
	}
	return reg, nil
}

func (s *registrationService) CheckAvailability(ctx context.Context, eventID, callerID string) (*domain.EventAvailability, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	count, err := s.regRepo.CountActive(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count active registrations: %w", err)
	}
	avail := domain.EvaluateAvailability(event, count, s.clk.Now(), callerID != "" && callerID == event.OwnerID)
	return &avail, nil
}

// notify sends the lifecycle email after commit. Email failure never fails
// the registration, so this runs detached from the request.
func (s *registrationService) notify(event *domain.Event, ticket *domain.Ticket, email string, confirmed bool) {
	if s.emails == nil || event == nil {
		return
	}
	data := &domain.RegistrationEmailData{
		Email:     email,
		EventName: event.Name,
	}
	if ticket != nil {
		data.TicketCode = ticket.TicketCode
	}
	go func() {
		var err error
		if confirmed {
			err = s.emails.SendRegistrationConfirmed(context.Background(), data)
		} else {
			err = s.emails.SendRegistrationCancelled(context.Background(), data)
		}
		if err != nil {
			log.Printf("[REGISTRATION] notification email failed: %v", err)
		}
	}()
}
