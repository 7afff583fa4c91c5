package services

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"

	"eventticketing/internal/clock"
	"eventticketing/internal/domain"
)

type ticketService struct {
	ticketRepo domain.TicketRepository
	regRepo    domain.RegistrationRepository
	eventRepo  domain.EventRepository
	clk        clock.Clock
}

// NewTicketService creates a TicketService with the given repositories.
func NewTicketService(
	ticketRepo domain.TicketRepository,
	regRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	clk clock.Clock,
) domain.TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		regRepo:    regRepo,
		eventRepo:  eventRepo,
		clk:        clk,
	}
}

const ticketCodeBytes = 16

// maxCodeAttempts bounds the regenerate-and-retry loop on code collisions.
const maxCodeAttempts = 5

// Lowercase base32 keeps codes URL-safe and unambiguous when read aloud.
var ticketCodeEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

func generateTicketCode() (string, error) {
	b := make([]byte, ticketCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate ticket code: %w", err)
	}
	return ticketCodeEncoding.EncodeToString(b), nil
}

func (s *ticketService) IssueForRegistration(ctx context.Context, reg *domain.Registration) (*domain.Ticket, error) {
	if reg.Status != domain.RegistrationStatusActive {
		return nil, domain.ErrAlreadyCancelled
	}

	if _, err := s.ticketRepo.GetValidByRegistration(ctx, reg.ID); err == nil {
		return nil, domain.ErrTicketAlreadyIssued
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get valid ticket: %w", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateTicketCode()
		if err != nil {
			return nil, err
		}

		exists, err := s.ticketRepo.ExistsByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check ticket code: %w", err)
		}
		if exists {
			continue
		}

		ticket := domain.NewTicket(reg, code, s.clk.Now())
		if err := s.ticketRepo.Create(ctx, ticket); err != nil {
			// A concurrent issue won the same code between the exists check
			// and the insert; regenerate.
			if errors.Is(err, domain.ErrDuplicateTicketCode) {
				continue
			}
			return nil, fmt.Errorf("create ticket: %w", err)
		}
		return ticket, nil
	}
	return nil, fmt.Errorf("ticket code generation exhausted after %d attempts", maxCodeAttempts)
}

func (s *ticketService) CancelForRegistration(ctx context.Context, registrationID string) error {
	ticket, err := s.ticketRepo.GetValidByRegistration(ctx, registrationID)
	if err != nil {
		// No live ticket (e.g. already used) is a no-op.
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get valid ticket: %w", err)
	}
	if err := s.ticketRepo.UpdateStatus(ctx, ticket.ID, domain.TicketStatusCancelled, nil); err != nil {
		return fmt.Errorf("cancel ticket: %w", err)
	}
	return nil
}

func (s *ticketService) ValidForRegistration(ctx context.Context, registrationID string) (*domain.Ticket, error) {
	return s.ticketRepo.GetValidByRegistration(ctx, registrationID)
}

func (s *ticketService) ReissueForRegistration(ctx context.Context, registrationID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.ticketRepo.WithTx(ctx, func(txCtx context.Context) error {
		reg, err := s.regRepo.GetByIDForUpdate(txCtx, registrationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get registration: %w", err)
		}
		if reg.Status != domain.RegistrationStatusActive {
			return domain.ErrAlreadyCancelled
		}
		if err := s.CancelForRegistration(txCtx, reg.ID); err != nil {
			return err
		}
		ticket, err = s.IssueForRegistration(txCtx, reg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) Verify(ctx context.Context, code string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if err := s.checkUsable(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) Use(ctx context.Context, code string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	var usable error
	err := s.ticketRepo.WithTx(ctx, func(txCtx context.Context) error {
		t, err := s.ticketRepo.GetByCodeForUpdate(txCtx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get ticket: %w", err)
		}
		if usable = s.checkUsable(txCtx, t); usable != nil {
			// The ticket outlived its event: record the expiry while we hold
			// the row lock, committing the flip even though the call fails.
			if errors.Is(usable, domain.ErrTicketEventEnded) && t.Status == domain.TicketStatusValid {
				if uerr := s.ticketRepo.UpdateStatus(txCtx, t.ID, domain.TicketStatusExpired, nil); uerr != nil {
					return fmt.Errorf("expire ticket: %w", uerr)
				}
			}
			return nil
		}
		now := s.clk.Now()
		if err := s.ticketRepo.UpdateStatus(txCtx, t.ID, domain.TicketStatusUsed, &now); err != nil {
			return fmt.Errorf("use ticket: %w", err)
		}
		t.Status = domain.TicketStatusUsed
		t.UsedAt = &now
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if usable != nil {
		return nil, usable
	}
	return ticket, nil
}

// checkUsable enforces the verification contract: the stored status must be
// valid and the bound event must not have ended. Expiry wins over a stored
// valid status.
func (s *ticketService) checkUsable(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.Status != domain.TicketStatusValid {
		return &domain.TicketWrongStatusError{Current: ticket.Status}
	}
	event, err := s.eventRepo.GetByID(ctx, ticket.EventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if !s.clk.Now().Before(event.EndTime) {
		return domain.ErrTicketEventEnded
	}
	return nil
}
