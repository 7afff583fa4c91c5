package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the actor may not act on the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when a request fails domain validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyCancelled is returned when an operation requires an active
	// registration but the registration is cancelled.
	ErrAlreadyCancelled = errors.New("registration is already cancelled")

	// ErrTicketEventEnded is returned when a ticket's event has ended; the
	// ticket is expired, regardless of its stored status.
	ErrTicketEventEnded = errors.New("ticket event has ended")

	// ErrTicketAlreadyIssued is returned when a registration already has a
	// valid ticket.
	ErrTicketAlreadyIssued = errors.New("registration already has a valid ticket")

	// ErrDuplicateTicketCode is returned by ticket creation on a code
	// collision so the caller can regenerate and retry.
	ErrDuplicateTicketCode = errors.New("duplicate ticket code")
)

// EventNotAvailableError is returned when registration is refused. Reason
// carries the first availability rule that failed.
type EventNotAvailableError struct {
	Reason AvailabilityReason
}

func (e *EventNotAvailableError) Error() string {
	return fmt.Sprintf("event is not available for registration: %s", e.Reason)
}

// TicketWrongStatusError is returned when a ticket operation requires a valid
// ticket but the ticket is in another state. Current reports that state so
// door staff can distinguish a used ticket from a cancelled one.
type TicketWrongStatusError struct {
	Current TicketStatus
}

func (e *TicketWrongStatusError) Error() string {
	return fmt.Sprintf("ticket is not valid: status is %s", e.Current)
}
