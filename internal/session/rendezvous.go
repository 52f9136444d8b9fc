package session

import (
	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
)

// JoinRoom parks id under a user-supplied room id, or completes the room
// when the parked connection holds the other role.
func (m *Manager) JoinRoom(id domain.ConnID, rawRoomID, rawRole string) error {
	return m.fail(id, m.joinRoom(id, rawRoomID, rawRole))
}

func (m *Manager) joinRoom(id domain.ConnID, rawRoomID, rawRole string) error {
	c, ok := m.conns.get(id)
	if !ok {
		return domain.ErrConnectionNotFound
	}
	if m.strategy != StrategyManual {
		return reject(domain.ErrStrategyDisabled, textStrategyQueue)
	}

	roomID, err := domain.ParseRoomID(rawRoomID)
	if err != nil {
		return reject(err, textInvalidRoomID)
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
	if _, active := m.rooms[roomID]; active {
		return reject(domain.ErrRoomFull, textRoomFull)
	}

	hostID, parked := m.rendezvous[roomID]
	if !parked {
		c.role = role
		c.rendezvous = roomID
		c.waitingSince = m.now()
		m.rendezvous[roomID] = id

		m.notify(id, JoinedRoom(roomID))
		m.logger.Debug(logging.Session, logging.Rendezvous, "connection parked", map[logging.ExtraKey]any{
			logging.ConnID: id,
			logging.RoomID: roomID,
			logging.Role:   role.String(),
		})
		return nil
	}

	host, _ := m.conns.get(hostID)
	if host.role == role {
		return reject(domain.ErrRoleConflict, textRoleTaken)
	}

	m.leaveWaiting(host)
	m.notify(id, JoinedRoom(roomID))

	confessor, listener := host, c
	if role == domain.RoleConfessor {
		confessor, listener = c, host
	}
	if _, err := m.openRoom(roomID, confessor, listener, true); err != nil {
		return err
	}
	return nil
}
