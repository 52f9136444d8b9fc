package session

import (
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
)

// SelectRole appends id to the queue for rawRole and pairs queue heads until
// one queue is empty.
func (m *Manager) SelectRole(id domain.ConnID, rawRole string) error {
	return m.fail(id, m.selectRole(id, rawRole))
}

func (m *Manager) selectRole(id domain.ConnID, rawRole string) error {
	c, ok := m.conns.get(id)
	if !ok {
		return domain.ErrConnectionNotFound
	}
	if m.strategy != StrategyQueue {
		return reject(domain.ErrStrategyDisabled, textStrategyManual)
	}

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return reject(err, textInvalidRole)
	}
	if c.roomed() {
		return reject(domain.ErrAlreadyInRoom, textAlreadyInRoom)
	}
	if c.waiting() {
		return reject(domain.ErrAlreadyQueued, textAlreadyQueued)
	}

	c.role = role
	c.queued = true
	c.waitingSince = m.now()
	m.queueFor(role).push(id)

	m.logger.Debug(logging.Session, logging.Matchmaking, "connection queued", map[logging.ExtraKey]any{
		logging.ConnID: id,
		logging.Role:   role.String(),
	})

	m.pair()
	return nil
}

// pair matches queue heads until either queue runs dry.
func (m *Manager) pair() {
	for m.confessors.len() > 0 && m.listeners.len() > 0 {
		confessorID, _ := m.confessors.pop()
		listenerID, _ := m.listeners.pop()

		confessor, _ := m.conns.get(confessorID)
		listener, _ := m.conns.get(listenerID)
		confessor.queued = false
		listener.queued = false

		roomID, err := m.generateRoomID()
		if err == nil {
			_, err = m.openRoom(roomID, confessor, listener, false)
		}
		if err != nil {
			// Put both back at the head so arrival order survives.
			m.confessors.pushFront(confessorID)
			m.listeners.pushFront(listenerID)
			confessor.queued = true
			listener.queued = true

			m.logger.Error(logging.Session, logging.Matchmaking, "pairing failed", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
			return
		}

		confessor.waitingSince = time.Time{}
		listener.waitingSince = time.Time{}
	}
}

// CreateRoom pairs a and b directly into a new server-generated room. Unset
// roles are filled in from the other member; a takes the confessor seat when
// neither has chosen.
func (m *Manager) CreateRoom(a, b domain.ConnID) (string, error) {
	ca, ok := m.conns.get(a)
	if !ok {
		return "", domain.ErrConnectionNotFound
	}
	cb, ok := m.conns.get(b)
	if !ok {
		return "", domain.ErrConnectionNotFound
	}
	if a == b {
		return "", domain.ErrRoleConflict
	}
	if ca.roomed() || cb.roomed() {
		return "", domain.ErrAlreadyInRoom
	}

	confessor, listener, err := assignSeats(ca, cb)
	if err != nil {
		return "", err
	}

	roomID, err := m.generateRoomID()
	if err != nil {
		return "", err
	}

	room, err := m.openRoom(roomID, confessor, listener, false)
	if err != nil {
		return "", err
	}

	m.leaveWaiting(ca)
	m.leaveWaiting(cb)
	return room.ID, nil
}

func assignSeats(a, b *connection) (confessor, listener *connection, err error) {
	ra, rb := a.role, b.role
	if ra == domain.RoleUnset {
		ra = rb.Opposite()
		if ra == domain.RoleUnset {
			ra = domain.RoleConfessor
		}
	}
	if rb == domain.RoleUnset {
		rb = ra.Opposite()
	}
	if ra == rb {
		return nil, nil, domain.ErrRoleConflict
	}

	if ra == domain.RoleConfessor {
		return a, b, nil
	}
	return b, a, nil
}
