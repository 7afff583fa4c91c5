package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationStatusActive    RegistrationStatus = "active"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
)

// Registration represents a user's registration for an event. A registration
// row is never deleted: cancel flips it to cancelled and re-registering flips
// it back, so a (event, user) pair keeps one row across its whole history.
// swagger:model Registration
type Registration struct {
	ID          string             `json:"id"`
	EventID     string             `json:"event_id"`
	UserID      string             `json:"user_id"`
	Status      RegistrationStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
}

// NewRegistration creates a new active Registration. ID is typically set by the repository on create.
func NewRegistration(eventID, userID string, createdAt time.Time) *Registration {
	return &Registration{
		EventID:   eventID,
		UserID:    userID,
		Status:    RegistrationStatusActive,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// RegistrationRepository defines storage operations for registrations.
// WithTx runs fn inside a transaction; all repository calls made with the
// context it passes join that transaction. The ForUpdate variants take
// row-level locks and must run inside WithTx.
type RegistrationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	CountActive(ctx context.Context, eventID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status RegistrationStatus, cancelledAt *time.Time, now time.Time) error
}

// RegisterOutcome distinguishes the three ways a register call can succeed.
type RegisterOutcome string

const (
	// OutcomeCreated means a brand-new registration was admitted.
	OutcomeCreated RegisterOutcome = "created"
	// OutcomeDuplicate means an active registration already existed; the
	// call was a no-op and the existing registration is returned. This is a
	// success, not an error, so retries stay safe.
	OutcomeDuplicate RegisterOutcome = "duplicate"
	// OutcomeReactivated means a previously cancelled registration was
	// flipped back to active through the same admission path as a fresh
	// registration.
	OutcomeReactivated RegisterOutcome = "reactivated"
)

// RegistrationResult is the outcome of a register call.
// swagger:model RegistrationResult
type RegistrationResult struct {
	Registration *Registration   `json:"registration"`
	Ticket       *Ticket         `json:"ticket,omitempty"`
	Outcome      RegisterOutcome `json:"outcome"`
}

// Actor identifies the authenticated caller of an operation. Email may be
// empty, in which case no notification is sent.
type Actor struct {
	ID    string
	Email string
}

// RegistrationService owns the register/cancel/reactivate state machine.
type RegistrationService interface {
	// Register admits the actor to the event, enforcing availability and
	// capacity atomically. Re-registering while active is a no-op duplicate;
	// registering after a cancel reactivates the existing row.
	Register(ctx context.Context, eventID string, actor Actor) (*RegistrationResult, error)
	// Cancel flips an active registration to cancelled and cancels its live
	// ticket in the same unit of work, releasing one capacity slot.
	Cancel(ctx context.Context, registrationID string, actor Actor) (*Registration, error)
	// CheckAvailability runs the availability evaluator without admitting.
	CheckAvailability(ctx context.Context, eventID, callerID string) (*EventAvailability, error)
}
