package audit

import "time"

// auditLogResponse is one room lifecycle entry. It never contains message text.
type auditLogResponse struct {
	ID        string         `json:"id" example:"3f6c0b7e-1f2a-4c55-9d43-0c1b7b0e2f10"` // Audit entry identifier
	RoomID    string         `json:"roomId" example:"room-k3j9x0a2b"`                   // Room the event belongs to
	EventType string         `json:"eventType" example:"room_closed"`                   // room_opened or room_closed
	Timestamp time.Time      `json:"timestamp" example:"2024-01-01T12:00:00Z"`          // When the event happened
	Metadata  map[string]any `json:"metadata,omitempty"`                                // manual, reason, lifetime_seconds
}

type auditLogsResponse struct {
	Logs []auditLogResponse `json:"logs"`
}
