package session

import (
	"fmt"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
)

func (m *Manager) generateRoomID() (string, error) {
	for i := 0; i < maxRoomIDAttempts; i++ {
		id, err := m.newRoomID()
		if err != nil {
			return "", fmt.Errorf("generate room id: %w", err)
		}
		if _, taken := m.rooms[id]; taken {
			continue
		}
		if _, parked := m.rendezvous[id]; parked {
			continue
		}
		return id, nil
	}
	return "", errRoomIDExhausted
}

// openRoom seats both connections and tells each its role. Callers have
// already cleared their waiting state.
func (m *Manager) openRoom(roomID string, confessor, listener *connection, manual bool) (*domain.Room, error) {
	room, err := domain.NewRoom(roomID, confessor.id, listener.id, manual, m.now())
	if err != nil {
		return nil, err
	}
	m.rooms[roomID] = room

	confessor.role, listener.role = domain.RoleConfessor, domain.RoleListener
	confessor.roomID, listener.roomID = roomID, roomID

	m.notify(confessor.id, Matched(domain.RoleConfessor, roomID))
	m.notify(listener.id, Matched(domain.RoleListener, roomID))
	m.observer.RoomOpened(*room)

	m.logger.Info(logging.Session, logging.Matchmaking, "room opened", map[logging.ExtraKey]any{
		logging.RoomID: roomID,
	})
	return room, nil
}

// DisbandRoom tears roomID down on behalf of initiator. An empty initiator
// closes the room for both members alike.
func (m *Manager) DisbandRoom(roomID string, initiator domain.ConnID, reason domain.CloseReason) error {
	room, ok := m.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if initiator != "" && !room.Has(initiator) {
		return domain.ErrNotInRoom
	}

	m.disbandRoom(room, initiator, reason)
	return nil
}

func (m *Manager) disbandRoom(room *domain.Room, initiator domain.ConnID, reason domain.CloseReason) {
	for _, member := range room.Members() {
		switch reason {
		case domain.CloseBurned:
			if member == initiator {
				m.notify(member, BurnConfession())
			} else {
				m.notify(member, ConfessionBurned())
			}
		case domain.CloseDisconnected:
			if member != initiator {
				m.notify(member, ParticipantDisconnected())
			}
		}
	}

	delete(m.rooms, room.ID)
	for _, member := range room.Members() {
		if c, ok := m.conns.get(member); ok {
			c.roomID = ""
			c.role = domain.RoleUnset
		}
	}

	now := m.now()
	m.observer.RoomClosed(*room, reason, now)

	m.logger.Info(logging.Session, logging.Lifecycle, "room closed", map[logging.ExtraKey]any{
		logging.RoomID: room.ID,
		logging.Reason: string(reason),
	})
}
