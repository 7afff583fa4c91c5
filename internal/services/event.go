package services

import (
	"context"
	"errors"
	"fmt"

	"eventticketing/internal/clock"
	"eventticketing/internal/domain"
)

type eventService struct {
	eventRepo domain.EventRepository
	clk       clock.Clock
}

// NewEventService creates an EventService backed by the given repository.
func NewEventService(eventRepo domain.EventRepository, clk clock.Clock) domain.EventService {
	return &eventService{
		eventRepo: eventRepo,
		clk:       clk,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	if event.OwnerID == "" {
		return fmt.Errorf("%w: event owner is required", domain.ErrInvalidInput)
	}
	if event.Name == "" {
		return fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if !event.EndTime.After(event.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", domain.ErrInvalidInput)
	}
	if event.Capacity != nil && *event.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidInput)
	}
	switch event.Status {
	case "":
		event.Status = domain.EventStatusDraft
	case domain.EventStatusDraft, domain.EventStatusPublished, domain.EventStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown event status %q", domain.ErrInvalidInput, event.Status)
	}

	now := s.clk.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
