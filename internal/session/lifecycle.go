package session

import (
	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
)

// Disconnect forgets id everywhere and closes its room, telling the peer.
// Unknown ids are ignored.
func (m *Manager) Disconnect(id domain.ConnID) {
	c, ok := m.conns.get(id)
	if !ok {
		return
	}

	m.leaveWaiting(c)
	m.cooldown.Forget(string(id))
	m.conns.remove(id)

	if c.roomed() {
		if room, ok := m.rooms[c.roomID]; ok {
			m.disbandRoom(room, id, domain.CloseDisconnected)
		}
	}

	m.logger.Debug(logging.Session, logging.Lifecycle, "connection removed", map[logging.ExtraKey]any{
		logging.ConnID: id,
	})
}

// EvictIdle drops connections that have waited longer than the idle timeout
// and tells them to choose again. It returns how many were evicted.
func (m *Manager) EvictIdle() int {
	if m.idleTimeout <= 0 {
		return 0
	}

	now := m.now()
	evicted := 0
	for _, c := range m.conns {
		if !c.waiting() || now.Sub(c.waitingSince) < m.idleTimeout {
			continue
		}

		m.leaveWaiting(c)
		c.role = domain.RoleUnset
		m.notify(c.id, ErrorMessage(textNoMatch))
		evicted++
	}

	if evicted > 0 {
		m.logger.Info(logging.Session, logging.Matchmaking, "idle connections evicted", map[logging.ExtraKey]any{
			"Count": evicted,
		})
	}
	return evicted
}

// Shutdown closes every room without notifying members and empties all
// waiting lists. Connections stay registered until they disconnect.
func (m *Manager) Shutdown() {
	for _, room := range m.rooms {
		m.disbandRoom(room, "", domain.CloseShutdown)
	}
	for _, c := range m.conns {
		m.leaveWaiting(c)
	}
}
