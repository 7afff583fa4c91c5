package domain

import (
	"context"
	"time"
)

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event represents a capacity-bounded event users can register for.
// Capacity nil means unlimited.
// swagger:model Event
type Event struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	OwnerID   string      `json:"owner_id"`
	Capacity  *int        `json:"capacity"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
	Status    EventStatus `json:"status"`
	IsPublic  bool        `json:"is_public"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name, ownerID string, capacity *int, startTime, endTime time.Time, status EventStatus, isPublic bool, createdAt time.Time) *Event {
	return &Event{
		Name:      name,
		OwnerID:   ownerID,
		Capacity:  capacity,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    status,
		IsPublic:  isPublic,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// EventRepository defines the interface for event storage.
// GetByIDForUpdate must run inside a repository transaction; it takes a
// row-level lock on the event so concurrent admissions serialize per event.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
}

// EventService defines organizer-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
}
