package domain

import (
	"context"
	"time"
)

// TicketStatus is the lifecycle state of a ticket. A ticket starts valid and
// moves one-way to used, cancelled, or expired; no transition leaves a
// terminal state.
type TicketStatus string

const (
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusExpired   TicketStatus = "expired"
)

// Ticket proves a valid registration. Exactly one valid ticket exists per
// active registration; TicketCode is the opaque token scanned at the door.
// swagger:model Ticket
type Ticket struct {
	ID             string       `json:"id"`
	EventID        string       `json:"event_id"`
	UserID         string       `json:"user_id"`
	RegistrationID string       `json:"registration_id"`
	TicketCode     string       `json:"ticket_code"`
	Status         TicketStatus `json:"status"`
	IssuedAt       time.Time    `json:"issued_at"`
	UsedAt         *time.Time   `json:"used_at,omitempty"`
}

// NewTicket creates a valid ticket bound to the given registration. ID is typically set by the repository on create.
func NewTicket(reg *Registration, code string, issuedAt time.Time) *Ticket {
	return &Ticket{
		EventID:        reg.EventID,
		UserID:         reg.UserID,
		RegistrationID: reg.ID,
		TicketCode:     code,
		Status:         TicketStatusValid,
		IssuedAt:       issuedAt,
	}
}

// TicketRepository defines storage operations for tickets. Create returns
// ErrDuplicateTicketCode on a code collision so callers can regenerate.
// GetByCodeForUpdate takes a row-level lock and must run inside WithTx.
type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, ticket *Ticket) error
	GetByCode(ctx context.Context, code string) (*Ticket, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*Ticket, error)
	GetValidByRegistration(ctx context.Context, registrationID string) (*Ticket, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status TicketStatus, usedAt *time.Time) error
}

// TicketService owns ticket issuance, verification, and consumption.
type TicketService interface {
	// IssueForRegistration issues a valid ticket for an active registration
	// that has no live ticket. Intended to be called inside the caller's
	// transaction context.
	IssueForRegistration(ctx context.Context, reg *Registration) (*Ticket, error)
	// CancelForRegistration cancels the registration's valid ticket, if any.
	CancelForRegistration(ctx context.Context, registrationID string) error
	// ValidForRegistration returns the registration's live ticket, or
	// ErrNotFound when none exists.
	ValidForRegistration(ctx context.Context, registrationID string) (*Ticket, error)
	// ReissueForRegistration cancels any live ticket and issues a fresh one
	// for an active registration, atomically. Administrative path.
	ReissueForRegistration(ctx context.Context, registrationID string) (*Ticket, error)
	// Verify checks that the code names a valid ticket for an event that has
	// not ended. Expiry is evaluated lazily here rather than by a sweep.
	Verify(ctx context.Context, code string) (*Ticket, error)
	// Use is Verify plus an atomic valid -> used transition. Concurrent
	// duplicate calls resolve to one success and one TicketWrongStatusError.
	Use(ctx context.Context, code string) (*Ticket, error)
}
