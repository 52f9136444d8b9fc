package stats

// statsResponse is a point-in-time view of the session core
type statsResponse struct {
	Connections       int `json:"connections" example:"12"`      // Open websocket connections
	WaitingConfessors int `json:"waitingConfessors" example:"2"` // Confessors waiting for a listener
	WaitingListeners  int `json:"waitingListeners" example:"0"`  // Listeners waiting for a confessor
	PendingRendezvous int `json:"pendingRendezvous" example:"1"` // Room codes with one participant parked
	ActiveRooms       int `json:"activeRooms" example:"4"`       // Rooms with both seats filled
}
