package domain

import "time"

// AvailabilityReason explains why an event does not accept new registrations.
type AvailabilityReason string

const (
	ReasonNotPublished AvailabilityReason = "not_published"
	ReasonPrivate      AvailabilityReason = "private"
	ReasonEnded        AvailabilityReason = "ended"
	ReasonFull         AvailabilityReason = "full"
)

// EventAvailability is the result of the availability check.
// swagger:model EventAvailability
type EventAvailability struct {
	Available bool               `json:"available"`
	Reason    AvailabilityReason `json:"reason,omitempty"`
}

// EvaluateAvailability decides whether the event currently accepts new
// registrations. Rules are checked in order; the first failing rule wins.
// activeCount is the number of currently active registrations for the event
// and elevated reports whether the caller may see non-public events.
func EvaluateAvailability(event *Event, activeCount int, now time.Time, elevated bool) EventAvailability {
	if event.Status != EventStatusPublished {
		return EventAvailability{Reason: ReasonNotPublished}
	}
	if !event.IsPublic && !elevated {
		return EventAvailability{Reason: ReasonPrivate}
	}
	if !now.Before(event.EndTime) {
		return EventAvailability{Reason: ReasonEnded}
	}
	if event.Capacity != nil && activeCount >= *event.Capacity {
		return EventAvailability{Reason: ReasonFull}
	}
	return EventAvailability{Available: true}
}
