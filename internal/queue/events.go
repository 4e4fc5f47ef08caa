package queue

import "time"

// EventType names a change observable by queue subscribers.
type EventType string

const (
	EventPartyJoined     EventType = "party_joined"
	EventPartyLeft       EventType = "party_left"
	EventBlockDispatched EventType = "block_dispatched"
	EventQueueUpdated    EventType = "queue_updated"
	EventQueueDeleted    EventType = "queue_deleted"
)

// Event is published after a queue mutation commits.
type Event struct {
	Type      EventType      `json:"event_type"`
	QueueCode string         `json:"queue_code"`
	Data      map[string]any `json:"data,omitempty"`
	At        time.Time      `json:"at"`
}

// Publisher receives committed queue events. Implementations must not block.
type Publisher interface {
	Publish(ev Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
