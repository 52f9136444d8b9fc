package messaging

import "time"

const (
	RoomsQueue      = "rooms"
	DeadLetterQueue = "dead_letter_queue"
)

// RoomEventData describes a room lifecycle change. It never carries message
// text or connection ids.
type RoomEventData struct {
	RoomID          string    `json:"roomId"`
	Manual          bool      `json:"manual"`
	Reason          string    `json:"reason,omitempty"`
	LifetimeSeconds float64   `json:"lifetimeSeconds,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}
