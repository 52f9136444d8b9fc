package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CloseReason records why a room was torn down.
type CloseReason string

const (
	CloseBurned       CloseReason = "burned"
	CloseDisconnected CloseReason = "disconnected"
	CloseShutdown     CloseReason = "shutdown"
)

type RoomEventType string

const (
	EventRoomOpened RoomEventType = "room_opened"
	EventRoomClosed RoomEventType = "room_closed"
)

// RoomAuditLog never carries message text or connection handles.
type RoomAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	RoomID    string         `bson:"room_id" json:"roomId"`
	EventType RoomEventType  `bson:"event_type" json:"eventType"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type RoomAuditRepository interface {
	Log(ctx context.Context, log *RoomAuditLog) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]RoomAuditLog, error)
	GetByEventType(ctx context.Context, eventType RoomEventType, from, to time.Time) ([]RoomAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewRoomOpenedLog(roomID string, manual bool, at time.Time) *RoomAuditLog {
	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventRoomOpened,
		Timestamp: at,
		Metadata: map[string]any{
			"manual": manual,
		},
	}
}

func NewRoomClosedLog(roomID string, reason CloseReason, lifetime time.Duration, at time.Time) *RoomAuditLog {
	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventRoomClosed,
		Timestamp: at,
		Metadata: map[string]any{
			"reason":           string(reason),
			"lifetime_seconds": lifetime.Seconds(),
		},
	}
}
