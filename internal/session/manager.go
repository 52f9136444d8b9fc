// Package session owns the matchmaking queues, the room table and the
// listening cooldown. A Manager is driven by exactly one goroutine; every
// call runs to completion before the next one starts.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
	"github.com/hilthontt/burnbox/internal/infrastructure/ratelimiter"
)

// Strategy selects how connections are paired.
type Strategy string

const (
	// StrategyQueue pairs role selections FIFO into server-generated rooms.
	StrategyQueue Strategy = "queue"
	// StrategyManual pairs two connections that join the same user-supplied room id.
	StrategyManual Strategy = "manual"
)

// RolePolicy selects which roles may send normal and listening messages.
type RolePolicy string

const (
	RolePolicyStrict  RolePolicy = "strict"
	RolePolicyRelaxed RolePolicy = "relaxed"
)

const (
	DefaultListeningCooldown = 10 * time.Second

	maxRoomIDAttempts = 8
)

type Options struct {
	Strategy          Strategy
	RolePolicy        RolePolicy
	ListeningCooldown time.Duration
	Acknowledge       bool
	// IdleTimeout bounds how long a connection may wait for a partner.
	// Zero waits forever.
	IdleTimeout time.Duration

	Now       func() time.Time
	NewRoomID func() (string, error)
	Logger    logging.Logger
	Observer  Observer
}

type Stats struct {
	Connections       int `json:"connections"`
	WaitingConfessors int `json:"waitingConfessors"`
	WaitingListeners  int `json:"waitingListeners"`
	PendingRendezvous int `json:"pendingRendezvous"`
	ActiveRooms       int `json:"activeRooms"`
}

type Manager struct {
	strategy    Strategy
	rolePolicy  RolePolicy
	acknowledge bool
	idleTimeout time.Duration

	notifier  Notifier
	observer  Observer
	logger    logging.Logger
	now       func() time.Time
	newRoomID func() (string, error)

	conns      registry
	confessors queue
	listeners  queue
	rooms      map[string]*domain.Room
	rendezvous map[string]domain.ConnID
	cooldown   *ratelimiter.Cooldown
}

func NewManager(notifier Notifier, opts Options) *Manager {
	if opts.Strategy == "" {
		opts.Strategy = StrategyQueue
	}
	if opts.RolePolicy == "" {
		opts.RolePolicy = RolePolicyStrict
	}
	if opts.ListeningCooldown <= 0 {
		opts.ListeningCooldown = DefaultListeningCooldown
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewRoomID == nil {
		opts.NewRoomID = domain.NewRoomID
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}

	return &Manager{
		strategy:    opts.Strategy,
		rolePolicy:  opts.RolePolicy,
		acknowledge: opts.Acknowledge,
		idleTimeout: opts.IdleTimeout,
		notifier:    notifier,
		observer:    opts.Observer,
		logger:      opts.Logger,
		now:         opts.Now,
		newRoomID:   opts.NewRoomID,
		conns:       make(registry),
		rooms:       make(map[string]*domain.Room),
		rendezvous:  make(map[string]domain.ConnID),
		cooldown:    ratelimiter.NewCooldown(opts.ListeningCooldown, opts.Now),
	}
}

func (m *Manager) Strategy() Strategy {
	return m.strategy
}

// Connect registers a new connection with no role.
func (m *Manager) Connect(id domain.ConnID) error {
	if id == "" {
		return domain.ErrConnectionNotFound
	}
	if _, exists := m.conns.get(id); exists {
		return fmt.Errorf("connect %s: %w", id, domain.ErrConnectionExists)
	}

	m.conns.add(id, m.now())
	m.logger.Debug(logging.Session, logging.Lifecycle, "connection registered", map[logging.ExtraKey]any{
		logging.ConnID: id,
	})
	return nil
}

// Peer returns the other member of id's room.
func (m *Manager) Peer(id domain.ConnID) (domain.ConnID, bool) {
	c, ok := m.conns.get(id)
	if !ok || !c.roomed() {
		return "", false
	}
	room, ok := m.rooms[c.roomID]
	if !ok {
		return "", false
	}
	return room.Peer(id)
}

func (m *Manager) RoomOf(id domain.ConnID) (string, bool) {
	c, ok := m.conns.get(id)
	if !ok || !c.roomed() {
		return "", false
	}
	return c.roomID, true
}

func (m *Manager) RoleOf(id domain.ConnID) domain.Role {
	if c, ok := m.conns.get(id); ok {
		return c.role
	}
	return domain.RoleUnset
}

// Waiting reports whether id sits in a queue or a rendezvous slot.
func (m *Manager) Waiting(id domain.ConnID) bool {
	c, ok := m.conns.get(id)
	return ok && c.waiting()
}

func (m *Manager) QueueLen(role domain.Role) int {
	if q := m.queueFor(role); q != nil {
		return q.len()
	}
	return 0
}

// Queue returns a copy of the waiting list for role, head first.
func (m *Manager) Queue(role domain.Role) []domain.ConnID {
	if q := m.queueFor(role); q != nil {
		return q.snapshot()
	}
	return nil
}

func (m *Manager) Stats() Stats {
	return Stats{
		Connections:       len(m.conns),
		WaitingConfessors: m.confessors.len(),
		WaitingListeners:  m.listeners.len(),
		PendingRendezvous: len(m.rendezvous),
		ActiveRooms:       len(m.rooms),
	}
}

func (m *Manager) queueFor(role domain.Role) *queue {
	switch role {
	case domain.RoleConfessor:
		return &m.confessors
	case domain.RoleListener:
		return &m.listeners
	}
	return nil
}

// leaveWaiting drops c from its queue or rendezvous slot.
func (m *Manager) leaveWaiting(c *connection) {
	if c.queued {
		if q := m.queueFor(c.role); q != nil {
			q.remove(c.id)
		}
		c.queued = false
	}
	if c.rendezvous != "" {
		if host, ok := m.rendezvous[c.rendezvous]; ok && host == c.id {
			delete(m.rendezvous, c.rendezvous)
		}
		c.rendezvous = ""
	}
	c.waitingSince = time.Time{}
}

func (m *Manager) notify(id domain.ConnID, ev Event) {
	m.notifier.Notify(id, ev)
}

// fail surfaces err to the sender and the observer, then returns it.
func (m *Manager) fail(id domain.ConnID, err error) error {
	if err == nil {
		return nil
	}

	m.observer.Rejected(id, err)

	if _, ok := m.conns.get(id); !ok {
		return err
	}

	var rej *Rejection
	if errors.As(err, &rej) {
		m.notify(id, ErrorMessage(rej.Text))
	} else {
		m.notify(id, ErrorMessage(textInternal))
	}

	m.logger.Debug(logging.Session, logging.Relay, "request rejected", map[logging.ExtraKey]any{
		logging.ConnID: id,
		logging.Reason: ReasonOf(err),
	})
	return err
}
