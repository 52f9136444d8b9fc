package ws

// Client to server events.
const (
	SelectRole  = "select_role"
	JoinRoom    = "join_room"
	SendMessage = "send_message"
)

// Server to client events not produced by the session manager.
const (
	ErrorEvent = "error_message"
)

const (
	textMalformed   = "Malformed message."
	textUnknown     = "Unknown event type."
	textSlowDown    = "Too many messages. Please slow down."
	textUnavailable = "Service is shutting down."
)
