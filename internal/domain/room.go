package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/hilthontt/burnbox/internal/infrastructure/validate"
)

const (
	roomIDPrefix = "room-"
	roomIDLength = 9

	roomIDChars = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	charsetLen = big.NewInt(int64(len(roomIDChars)))

	ErrNotInRoom          = errors.New("not in a room")
	ErrRateLimited        = errors.New("rate limited")
	ErrRoleConflict       = errors.New("role conflict")
	ErrAlreadyQueued      = errors.New("already waiting for a match")
	ErrAlreadyInRoom      = errors.New("already in room")
	ErrRoomFull           = errors.New("room is full")
	ErrRoomNotFound       = errors.New("room not found")
	ErrInvalidRoomID      = errors.New("invalid room id")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrStrategyDisabled   = errors.New("pairing strategy disabled")
	ErrConnectionExists   = errors.New("connection already registered")
)

// ConnID is the opaque handle of one live realtime connection.
type ConnID string

// Room is an active two-party conversation. Both seats are always filled
// while the room is tracked.
type Room struct {
	ID        string    `json:"id"`
	Confessor ConnID    `json:"-"`
	Listener  ConnID    `json:"-"`
	Manual    bool      `json:"manual"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewRoom(id string, confessor, listener ConnID, manual bool, now time.Time) (*Room, error) {
	if id == "" {
		return nil, ErrInvalidRoomID
	}
	if confessor == "" || listener == "" || confessor == listener {
		return nil, ErrConnectionNotFound
	}

	return &Room{
		ID:        id,
		Confessor: confessor,
		Listener:  listener,
		Manual:    manual,
		CreatedAt: now,
	}, nil
}

func (r *Room) Has(id ConnID) bool {
	return id != "" && (r.Confessor == id || r.Listener == id)
}

func (r *Room) Peer(id ConnID) (ConnID, bool) {
	switch id {
	case r.Confessor:
		return r.Listener, true
	case r.Listener:
		return r.Confessor, true
	}
	return "", false
}

func (r *Room) RoleOf(id ConnID) Role {
	switch id {
	case r.Confessor:
		return RoleConfessor
	case r.Listener:
		return RoleListener
	}
	return RoleUnset
}

func (r *Room) Members() []ConnID {
	return []ConnID{r.Confessor, r.Listener}
}

// NewRoomID returns a server-generated id of the form room-xxxxxxxxx.
func NewRoomID() (string, error) {
	var sb strings.Builder
	sb.Grow(len(roomIDPrefix) + roomIDLength)
	sb.WriteString(roomIDPrefix)

	for i := 0; i < roomIDLength; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(roomIDChars[n.Int64()])
	}

	return sb.String(), nil
}

var validateRoomID = validate.Compose(
	validate.Required(),
	validate.LengthBetween(3, 64),
	validate.NoSpaces(),
	validate.Matches(`^[a-zA-Z0-9_-]+$`, "room id can only contain letters, numbers, underscores, and hyphens"),
)

// ParseRoomID normalises a room id typed in by a user.
func ParseRoomID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if err := validateRoomID(id); err != nil {
		return "", errors.Join(ErrInvalidRoomID, err)
	}
	return id, nil
}
