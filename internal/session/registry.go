package session

import (
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
)

// connection holds the ephemeral attributes of one live connection. The
// listening cooldown is kept by the Manager's limiter under the same id.
type connection struct {
	id          domain.ConnID
	role        domain.Role
	roomID      string
	connectedAt time.Time

	// Waiting state. At most one of queued and rendezvous is set, and only
	// while roomID is empty.
	queued       bool
	rendezvous   string
	waitingSince time.Time
}

func (c *connection) waiting() bool {
	return c.queued || c.rendezvous != ""
}

func (c *connection) roomed() bool {
	return c.roomID != ""
}

type registry map[domain.ConnID]*connection

func (r registry) add(id domain.ConnID, now time.Time) *connection {
	c := &connection{id: id, connectedAt: now}
	r[id] = c
	return c
}

func (r registry) get(id domain.ConnID) (*connection, bool) {
	c, ok := r[id]
	return c, ok
}

func (r registry) remove(id domain.ConnID) {
	delete(r, id)
}
