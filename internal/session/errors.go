package session

import (
	"errors"

	"github.com/hilthontt/burnbox/internal/domain"
)

var errRoomIDExhausted = errors.New("could not generate a free room id")

// Rejection pairs a domain error with the text shown to the sender.
type Rejection struct {
	Err  error
	Text string
}

func (r *Rejection) Error() string {
	return r.Err.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

func reject(err error, text string) error {
	return &Rejection{Err: err, Text: text}
}

// ReasonOf names the domain error behind err for logs and metrics.
func ReasonOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrInvalidMode):
		return "invalid_mode"
	case errors.Is(err, domain.ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, domain.ErrRoleConflict):
		return "role_conflict"
	case errors.Is(err, domain.ErrAlreadyQueued):
		return "already_queued"
	case errors.Is(err, domain.ErrAlreadyInRoom):
		return "already_in_room"
	case errors.Is(err, domain.ErrRoomFull):
		return "room_full"
	case errors.Is(err, domain.ErrInvalidRoomID):
		return "invalid_room_id"
	case errors.Is(err, domain.ErrStrategyDisabled):
		return "strategy_disabled"
	case errors.Is(err, domain.ErrConnectionNotFound):
		return "connection_not_found"
	}
	return "internal"
}
