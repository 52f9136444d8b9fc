package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
	"github.com/hilthontt/burnbox/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/burnbox/internal/infrastructure/tracing"
	"github.com/hilthontt/burnbox/internal/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrCoreStopped  = errors.New("core stopped")
	errUnknownEvent = errors.New("unknown event type")
	errFlooding     = errors.New("too many frames")
)

type CoreOptions struct {
	Session session.Options
	// IdleSweepInterval is how often waiting connections are checked
	// against Session.IdleTimeout.
	IdleSweepInterval time.Duration
	// MaxFramesPerSecond caps inbound frames per connection. Zero disables it.
	MaxFramesPerSecond int

	Logger  logging.Logger
	OnStats func(session.Stats)
	OnDrop  func()
}

type frame struct {
	client *Client
	raw    []byte
}

// Core is the only goroutine that touches the session manager. Every
// register, unregister and inbound frame is handled to completion in turn.
type Core struct {
	manager *session.Manager
	clients map[domain.ConnID]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan frame
	statsReq   chan chan session.Stats

	frames    *ratelimiter.FixedWindowRateLimiter
	idleSweep time.Duration
	logger    logging.Logger
	tracer    trace.Tracer
	onStats   func(session.Stats)
	onDrop    func()

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewCore(opts CoreOptions) *Core {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = opts.Logger
	}

	c := &Core{
		clients:    make(map[domain.ConnID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan frame, 256),
		statsReq:   make(chan chan session.Stats),
		idleSweep:  opts.IdleSweepInterval,
		logger:     opts.Logger,
		tracer:     tracing.GetTracer("burnbox/ws"),
		onStats:    opts.OnStats,
		onDrop:     opts.OnDrop,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	if opts.MaxFramesPerSecond > 0 {
		c.frames = ratelimiter.NewFixedWindowRateLimiter(opts.MaxFramesPerSecond, time.Second)
	}
	if opts.Session.IdleTimeout <= 0 {
		c.idleSweep = 0
	}

	c.manager = session.NewManager(c, opts.Session)
	return c
}

func (c *Core) Run(ctx context.Context) {
	defer close(c.done)

	var sweep <-chan time.Time
	if c.idleSweep > 0 {
		ticker := time.NewTicker(c.idleSweep)
		defer ticker.Stop()
		sweep = ticker.C
	}

	c.logger.Info(logging.WebSocket, logging.Startup, "core started", map[logging.ExtraKey]any{
		"Strategy": string(c.manager.Strategy()),
	})

	for {
		select {
		case <-ctx.Done():
			c.stop()
			return

		case <-c.shutdown:
			c.stop()
			return

		case cl := <-c.register:
			c.handleRegister(cl)

		case cl := <-c.unregister:
			c.handleUnregister(cl)

		case f := <-c.inbound:
			c.handleFrame(f)

		case reply := <-c.statsReq:
			reply <- c.manager.Stats()
			continue

		case <-sweep:
			c.manager.EvictIdle()
		}

		if c.onStats != nil {
			c.onStats(c.manager.Stats())
		}
	}
}

// Register hands a freshly upgraded client to the loop. It reports false
// once the core has stopped.
func (c *Core) Register(cl *Client) bool {
	select {
	case c.register <- cl:
		return true
	case <-c.done:
		return false
	}
}

func (c *Core) Unregister(cl *Client) {
	select {
	case c.unregister <- cl:
	case <-c.done:
	}
}

// Dispatch queues one raw frame from cl. It reports false when the client
// or the core has gone away.
func (c *Core) Dispatch(cl *Client, raw []byte) bool {
	select {
	case c.inbound <- frame{client: cl, raw: raw}:
		return true
	case <-cl.closed:
		return false
	case <-c.done:
		return false
	}
}

// Stats returns a snapshot taken inside the loop.
func (c *Core) Stats(ctx context.Context) (session.Stats, error) {
	reply := make(chan session.Stats, 1)

	select {
	case c.statsReq <- reply:
	case <-ctx.Done():
		return session.Stats{}, ctx.Err()
	case <-c.done:
		return session.Stats{}, ErrCoreStopped
	}

	select {
	case stats := <-reply:
		return stats, nil
	case <-ctx.Done():
		return session.Stats{}, ctx.Err()
	}
}

func (c *Core) Shutdown() {
	c.once.Do(func() {
		close(c.shutdown)
	})
}

func (c *Core) Done() <-chan struct{} {
	return c.done
}

// Notify implements session.Notifier. It runs on the loop goroutine and
// never blocks: a full client buffer drops the frame.
func (c *Core) Notify(id domain.ConnID, ev session.Event) {
	cl, ok := c.clients[id]
	if !ok {
		return
	}
	c.send(cl, FromEvent(ev))
}

func (c *Core) send(cl *Client, msg *WSMessage) {
	select {
	case cl.Message <- msg:
	default:
		if c.onDrop != nil {
			c.onDrop()
		}
		c.logger.Warn(logging.WebSocket, logging.Write, "client buffer full, dropping frame", map[logging.ExtraKey]any{
			logging.ConnID: cl.ID,
			logging.Event:  msg.Type,
		})
	}
}

func (c *Core) handleRegister(cl *Client) {
	if err := c.manager.Connect(cl.ID); err != nil {
		c.logger.Warn(logging.WebSocket, logging.Upgrade, "rejecting client", map[logging.ExtraKey]any{
			logging.ConnID:       cl.ID,
			logging.ErrorMessage: err.Error(),
		})
		close(cl.Message)
		return
	}
	c.clients[cl.ID] = cl
}

func (c *Core) handleUnregister(cl *Client) {
	if current, ok := c.clients[cl.ID]; !ok || current != cl {
		return
	}

	delete(c.clients, cl.ID)
	c.manager.Disconnect(cl.ID)
	if c.frames != nil {
		c.frames.Forget(string(cl.ID))
	}
	close(cl.Message)
}

func (c *Core) handleFrame(f frame) {
	cl := f.client
	if current, ok := c.clients[cl.ID]; !ok || current != cl {
		return
	}

	if c.frames != nil {
		if ok, _ := c.frames.Allow(string(cl.ID)); !ok {
			c.send(cl, NewError(textSlowDown))
			c.observeRejection(cl.ID, errFlooding)
			return
		}
	}

	msg, err := decodeEnvelope(f.raw)
	if err != nil {
		c.send(cl, NewError(textMalformed))
		c.observeRejection(cl.ID, err)
		return
	}

	_, span := c.tracer.Start(context.Background(), "session."+msg.Type,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("session.conn_id", string(cl.ID))),
	)
	defer span.End()

	err = c.route(cl, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, session.ReasonOf(err))
	}
}

func (c *Core) route(cl *Client, msg inboundMessage) error {
	switch msg.Type {
	case SelectRole:
		role, err := decodeRole(msg.Data)
		if err != nil {
			c.send(cl, NewError(textMalformed))
			return err
		}
		return c.manager.SelectRole(cl.ID, role)

	case JoinRoom:
		payload, err := decodePayload[JoinRoomPayload](msg.Data)
		if err != nil {
			c.send(cl, NewError(textMalformed))
			return err
		}
		return c.manager.JoinRoom(cl.ID, payload.RoomID, payload.Role)

	case SendMessage:
		payload, err := decodePayload[SendMessagePayload](msg.Data)
		if err != nil {
			c.send(cl, NewError(textMalformed))
			return err
		}
		return c.manager.SendMessage(cl.ID, payload.Message, payload.Mode)
	}

	c.send(cl, NewError(textUnknown))
	c.observeRejection(cl.ID, errUnknownEvent)
	return errUnknownEvent
}

func (c *Core) observeRejection(id domain.ConnID, err error) {
	c.logger.Debug(logging.WebSocket, logging.Read, "frame rejected", map[logging.ExtraKey]any{
		logging.ConnID:       id,
		logging.ErrorMessage: err.Error(),
	})
}

// stop closes every room and client. Runs on the loop goroutine.
func (c *Core) stop() {
	c.manager.Shutdown()
	for id, cl := range c.clients {
		c.send(cl, NewError(textUnavailable))
		close(cl.Message)
		delete(c.clients, id)
	}
	if c.frames != nil {
		c.frames.Close()
	}

	c.logger.Info(logging.WebSocket, logging.Shutdown, "core stopped", nil)
}
