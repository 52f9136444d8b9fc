package session

import (
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
)

// Observer receives lifecycle hooks from the Manager. Hooks run on the
// goroutine driving the Manager and must return quickly.
type Observer interface {
	RoomOpened(room domain.Room)
	RoomClosed(room domain.Room, reason domain.CloseReason, at time.Time)
	Rejected(id domain.ConnID, err error)
	Relayed(id domain.ConnID, mode domain.Mode)
}

// NopObserver can be embedded by observers that only need some hooks.
type NopObserver struct{}

func (NopObserver) RoomOpened(domain.Room)                                {}
func (NopObserver) RoomClosed(domain.Room, domain.CloseReason, time.Time) {}
func (NopObserver) Rejected(domain.ConnID, error)                         {}
func (NopObserver) Relayed(domain.ConnID, domain.Mode)                    {}

// Observers fans every hook out to each member in order.
type Observers []Observer

func (o Observers) RoomOpened(room domain.Room) {
	for _, obs := range o {
		obs.RoomOpened(room)
	}
}

func (o Observers) RoomClosed(room domain.Room, reason domain.CloseReason, at time.Time) {
	for _, obs := range o {
		obs.RoomClosed(room, reason, at)
	}
}

func (o Observers) Rejected(id domain.ConnID, err error) {
	for _, obs := range o {
		obs.Rejected(id, err)
	}
}

func (o Observers) Relayed(id domain.ConnID, mode domain.Mode) {
	for _, obs := range o {
		obs.Relayed(id, mode)
	}
}
