package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrInvalidMode = errors.New("invalid message mode")
)

// Role is the side of the conversation a connection has chosen.
type Role int

const (
	RoleUnset Role = iota
	RoleConfessor
	RoleListener
)

func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confessor":
		return RoleConfessor, nil
	case "listener":
		return RoleListener, nil
	}
	return RoleUnset, ErrInvalidRole
}

func (r Role) String() string {
	switch r {
	case RoleConfessor:
		return "confessor"
	case RoleListener:
		return "listener"
	}
	return "unset"
}

// Label is how the role is shown to the other party in relayed messages.
func (r Role) Label() string {
	switch r {
	case RoleConfessor:
		return "Confessor"
	case RoleListener:
		return "Listener"
	}
	return ""
}

// Opposite returns the role a connection must be paired with.
func (r Role) Opposite() Role {
	switch r {
	case RoleConfessor:
		return RoleListener
	case RoleListener:
		return RoleConfessor
	}
	return RoleUnset
}

// Mode selects how send_message is handled.
type Mode int

const (
	ModeNormal Mode = iota + 1
	ModeListening
	ModeSolo
)

func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "normal":
		return ModeNormal, nil
	case "listening":
		return ModeListening, nil
	case "solo":
		return ModeSolo, nil
	}
	return 0, ErrInvalidMode
}

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeListening:
		return "listening"
	case ModeSolo:
		return "solo"
	}
	return "invalid"
}
