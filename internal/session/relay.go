package session

import (
	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
)

const (
	textConfessorOnly = "Only the confessor can send messages."
	textListenerOnly  = "Only the listener can send that."
)

// SendMessage relays one message event from id according to rawMode.
func (m *Manager) SendMessage(id domain.ConnID, message, rawMode string) error {
	return m.fail(id, m.sendMessage(id, message, rawMode))
}

func (m *Manager) sendMessage(id domain.ConnID, message, rawMode string) error {
	c, ok := m.conns.get(id)
	if !ok {
		return domain.ErrConnectionNotFound
	}
	if !c.roomed() {
		return reject(domain.ErrNotInRoom, textNotInRoom)
	}
	room, ok := m.rooms[c.roomID]
	if !ok {
		c.roomID = ""
		return reject(domain.ErrNotInRoom, textNotInRoom)
	}

	mode, err := domain.ParseMode(rawMode)
	if err != nil {
		return reject(err, textInvalidMode)
	}

	role := room.RoleOf(id)
	peer, _ := room.Peer(id)
	strict := m.rolePolicy == RolePolicyStrict

	switch mode {
	case domain.ModeNormal:
		if strict && role != domain.RoleConfessor {
			return reject(domain.ErrRoleConflict, textConfessorOnly)
		}
		m.notify(peer, ReceiveMessage(role.Label(), message))
		m.relayed(id, room.ID, mode)

	case domain.ModeListening:
		if strict && role != domain.RoleListener {
			return reject(domain.ErrRoleConflict, textListenerOnly)
		}
		if allowed, wait := m.cooldown.CheckAndRecord(string(id)); !allowed {
			return reject(domain.ErrRateLimited, rateLimitedText(wait))
		}
		// The client's text is ignored; the mode is the message.
		m.notify(peer, ReceiveMessage(domain.RoleListener.Label(), ListeningMessage))
		m.relayed(id, room.ID, mode)

	case domain.ModeSolo:
		m.observer.Relayed(id, mode)
		m.disbandRoom(room, id, domain.CloseBurned)
	}

	return nil
}

func (m *Manager) relayed(id domain.ConnID, roomID string, mode domain.Mode) {
	if m.acknowledge {
		m.notify(id, MessageSent(textMessageSent))
	}
	m.observer.Relayed(id, mode)

	m.logger.Debug(logging.Session, logging.Relay, "message relayed", map[logging.ExtraKey]any{
		logging.ConnID: id,
		logging.RoomID: roomID,
		logging.Mode:   mode.String(),
	})
}
