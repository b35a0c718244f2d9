// Package events publishes roster change notifications to Kafka.
package events

import (
	"time"

	"github.com/google/uuid"

	"example.com/activitydirectory/internal/domain"
)

// RosterChanged is the JSON payload emitted after a signup or unregistration.
type RosterChanged struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	RosterSize int       `json:"roster_size"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRosterChanged stamps a fresh event ID onto a domain roster change.
func NewRosterChanged(change domain.RosterChange) RosterChanged {
	return RosterChanged{
		EventID:    uuid.NewString(),
		EventType:  string(change.Type),
		Activity:   change.Activity,
		Email:      change.Email,
		RosterSize: change.RosterSize,
		OccurredAt: change.OccurredAt,
	}
}
