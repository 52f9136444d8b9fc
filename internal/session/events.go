package session

import (
	"fmt"

	"github.com/hilthontt/burnbox/internal/domain"
)

type EventType string

const (
	EventMatched                 EventType = "matched"
	EventJoinedRoom              EventType = "joined_room"
	EventReceiveMessage          EventType = "receive_message"
	EventBurnConfession          EventType = "burn_confession"
	EventConfessionBurned        EventType = "confession_burned"
	EventParticipantDisconnected EventType = "participant_disconnected"
	EventErrorMessage            EventType = "error_message"
	EventMessageSent             EventType = "message_sent"
)

const (
	ListeningMessage = "I'm listening"

	textNotInRoom      = "You are not in a chat room."
	textInvalidMode    = "Invalid message mode."
	textInvalidRole    = "Invalid role."
	textInvalidRoomID  = "Invalid room id."
	textAlreadyQueued  = "You are already waiting for a match."
	textAlreadyInRoom  = "You are already in a chat room."
	textRoomFull       = "That room is already full."
	textRoleTaken      = "That role is already taken in this room."
	textStrategyQueue  = "Room codes are disabled. Please choose a role instead."
	textStrategyManual = "Matchmaking is disabled. Please join a room with a code."
	textMessageSent    = "Message sent."
	textNoMatch        = "No match found. Please choose a role again."
	textInternal       = "Something went wrong. Please try again."
)

// Event is one outbound signal for a single connection.
type Event struct {
	Type EventType
	Data any
}

type MatchedPayload struct {
	Role   string `json:"role"`
	RoomID string `json:"roomId"`
}

type MessagePayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

func Matched(role domain.Role, roomID string) Event {
	return Event{Type: EventMatched, Data: MatchedPayload{Role: role.String(), RoomID: roomID}}
}

func JoinedRoom(roomID string) Event {
	return Event{Type: EventJoinedRoom, Data: roomID}
}

func ReceiveMessage(from, message string) Event {
	return Event{Type: EventReceiveMessage, Data: MessagePayload{From: from, Message: message}}
}

func BurnConfession() Event {
	return Event{Type: EventBurnConfession}
}

func ConfessionBurned() Event {
	return Event{Type: EventConfessionBurned}
}

func ParticipantDisconnected() Event {
	return Event{Type: EventParticipantDisconnected}
}

func ErrorMessage(text string) Event {
	return Event{Type: EventErrorMessage, Data: text}
}

func MessageSent(text string) Event {
	return Event{Type: EventMessageSent, Data: text}
}

func rateLimitedText(seconds int) string {
	unit := "seconds"
	if seconds == 1 {
		unit = "second"
	}
	return fmt.Sprintf("Please wait %d %s before sending again.", seconds, unit)
}

// Notifier delivers events to connections. Implementations must not block.
type Notifier interface {
	Notify(id domain.ConnID, ev Event)
}

type NotifierFunc func(id domain.ConnID, ev Event)

func (f NotifierFunc) Notify(id domain.ConnID, ev Event) {
	f(id, ev)
}
