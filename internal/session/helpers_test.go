package session_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/session"
)

type recorder struct {
	events map[domain.ConnID][]session.Event
}

func newRecorder() *recorder {
	return &recorder{events: make(map[domain.ConnID][]session.Event)}
}

func (r *recorder) Notify(id domain.ConnID, ev session.Event) {
	r.events[id] = append(r.events[id], ev)
}

func (r *recorder) of(id domain.ConnID) []session.Event {
	return r.events[id]
}

func (r *recorder) types(id domain.ConnID) []session.EventType {
	var out []session.EventType
	for _, ev := range r.events[id] {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recorder) last(id domain.ConnID) session.Event {
	evs := r.events[id]
	if len(evs) == 0 {
		return session.Event{}
	}
	return evs[len(evs)-1]
}

func (r *recorder) count(t session.EventType) int {
	n := 0
	for _, evs := range r.events {
		for _, ev := range evs {
			if ev.Type == t {
				n++
			}
		}
	}
	return n
}

func (r *recorder) reset() {
	r.events = make(map[domain.ConnID][]session.Event)
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("room-%03d", n), nil
	}
}

type harness struct {
	m     *session.Manager
	rec   *recorder
	clock *clock
}

func newHarness(t *testing.T, opts session.Options) *harness {
	t.Helper()

	rec := newRecorder()
	clk := &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	if opts.Now == nil {
		opts.Now = clk.Now
	}
	if opts.NewRoomID == nil {
		opts.NewRoomID = sequentialIDs()
	}

	return &harness{
		m:     session.NewManager(rec, opts),
		rec:   rec,
		clock: clk,
	}
}

func (h *harness) connect(t *testing.T, ids ...domain.ConnID) {
	t.Helper()
	for _, id := range ids {
		if err := h.m.Connect(id); err != nil {
			t.Fatalf("connect %s: %v", id, err)
		}
	}
}

// pair connects a confessor and a listener and matches them.
func (h *harness) pair(t *testing.T, confessor, listener domain.ConnID) string {
	t.Helper()
	h.connect(t, confessor, listener)
	if err := h.m.SelectRole(confessor, "confessor"); err != nil {
		t.Fatalf("select confessor: %v", err)
	}
	if err := h.m.SelectRole(listener, "listener"); err != nil {
		t.Fatalf("select listener: %v", err)
	}
	roomID, ok := h.m.RoomOf(confessor)
	if !ok {
		t.Fatalf("%s was not matched", confessor)
	}
	return roomID
}
