package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
	"github.com/hilthontt/burnbox/internal/infrastructure/ws"
)

type Handler struct {
	core      *ws.Core
	upgrader  *websocket.Upgrader
	clientCfg ws.ClientConfig
	logger    logging.Logger
}

func NewHandler(core *ws.Core, upgrader *websocket.Upgrader, clientCfg ws.ClientConfig, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Handler{
		core:      core,
		upgrader:  upgrader,
		clientCfg: clientCfg,
		logger:    logger,
	}
}

// ServeWS godoc
// @Summary      Open a chat session
// @Description  Upgrades to a WebSocket. Clients send select_role, join_room and send_message envelopes and receive matched, joined_room, receive_message, burn_confession, confession_burned, participant_disconnected, message_sent and error_message envelopes.
// @Tags         session
// @Success      101 "Switching Protocols - WebSocket connection established"
// @Failure      400 {object} map[string]interface{} "Bad request - not a WebSocket handshake"
// @Failure      429 {object} map[string]interface{} "Too many requests"
// @Router       /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Warn(logging.WebSocket, logging.Upgrade, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ClientIp:     r.RemoteAddr,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	id := domain.ConnID(uuid.NewString())
	client := ws.NewClient(conn, id, h.clientCfg, h.logger)

	if !h.core.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "service is shutting down"))
		_ = conn.Close()
		return
	}

	h.logger.Debug(logging.WebSocket, logging.Upgrade, "client connected", map[logging.ExtraKey]any{
		logging.ConnID: id,
	})

	go client.WriteMessage()
	go client.ReadMessage(h.core)
}
