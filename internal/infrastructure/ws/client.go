package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
)

type ClientConfig struct {
	SendBuffer     int
	MaxMessageSize int64
	PongWait       time.Duration
	WriteWait      time.Duration
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		SendBuffer:     256,
		MaxMessageSize: 4096,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
	}
}

func (c ClientConfig) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

// Client is one participant's connection. Message is written only by the
// Core and closed by it when the client is unregistered.
type Client struct {
	conn    *connWrapper
	Message chan *WSMessage
	ID      domain.ConnID

	cfg    ClientConfig
	logger logging.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(conn *websocket.Conn, id domain.ConnID, cfg ClientConfig, logger logging.Logger) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultClientConfig().SendBuffer
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = DefaultClientConfig().PongWait
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = DefaultClientConfig().WriteWait
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *WSMessage, cfg.SendBuffer),
		ID:      id,
		cfg:     cfg,
		logger:  logger,
		closed:  make(chan struct{}),
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// ReadMessage forwards frames to core until the connection fails, then
// unregisters the client.
func (c *Client) ReadMessage(core *Core) {
	defer func() {
		core.Unregister(c)
		c.Close()
	}()

	if c.cfg.MaxMessageSize > 0 {
		c.conn.conn.SetReadLimit(c.cfg.MaxMessageSize)
	}
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.conn.SetPongHandler(func(string) error {
		return c.conn.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn(logging.WebSocket, logging.Read, "unexpected close", map[logging.ExtraKey]any{
					logging.ConnID:       c.ID,
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}

		if len(raw) == 0 {
			continue
		}

		if !core.Dispatch(c, raw) {
			return
		}
	}
}

// WriteMessage drains Message in order and keeps the connection alive with pings.
func (c *Client) WriteMessage() {
	ticker := time.NewTicker(c.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Message:
			if !ok {
				_ = c.conn.WriteClose(websocket.CloseNormalClosure, "", time.Now().Add(c.cfg.WriteWait))
				return
			}

			if err := c.conn.WriteJSON(msg, time.Now().Add(c.cfg.WriteWait)); err != nil {
				c.logger.Warn(logging.WebSocket, logging.Write, "write failed", map[logging.ExtraKey]any{
					logging.ConnID:       c.ID,
					logging.Event:        msg.Type,
					logging.ErrorMessage: err.Error(),
				})
				return
			}

		case <-ticker.C:
			if err := c.conn.WritePing(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}
