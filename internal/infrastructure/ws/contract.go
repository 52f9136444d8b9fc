package ws

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hilthontt/burnbox/internal/session"
)

var ErrMalformedFrame = errors.New("malformed frame")

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// inboundMessage defers payload decoding until the event type is known.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	Role   string `json:"role"`
}

type SendMessagePayload struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

type selectRolePayload struct {
	Role string `json:"role"`
}

func FromEvent(ev session.Event) *WSMessage {
	return &WSMessage{
		Type: string(ev.Type),
		Data: ev.Data,
	}
}

func NewError(text string) *WSMessage {
	return &WSMessage{
		Type: ErrorEvent,
		Data: text,
	}
}

func decodeEnvelope(raw []byte) (inboundMessage, error) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return inboundMessage{}, errors.Join(ErrMalformedFrame, err)
	}
	msg.Type = strings.TrimSpace(msg.Type)
	if msg.Type == "" {
		return inboundMessage{}, ErrMalformedFrame
	}
	return msg, nil
}

// decodeRole accepts either "listener" or {"role": "listener"}.
func decodeRole(data json.RawMessage) (string, error) {
	var role string
	if err := json.Unmarshal(data, &role); err == nil {
		return role, nil
	}

	var payload selectRolePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", errors.Join(ErrMalformedFrame, err)
	}
	return payload.Role, nil
}

func decodePayload[T any](data json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, errors.Join(ErrMalformedFrame, err)
	}
	return payload, nil
}
