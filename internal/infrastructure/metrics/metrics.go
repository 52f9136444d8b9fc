// Package metrics exposes session counters and gauges in the Prometheus
// text format. Nothing it records identifies a participant.
package metrics

import (
	"net/http"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "burnbox"

// Metrics implements session.Observer and receives stats snapshots and
// dropped-frame signals from the websocket core.
type Metrics struct {
	registry *prometheus.Registry

	connections       prometheus.Gauge
	waiting           *prometheus.GaugeVec
	pendingRendezvous prometheus.Gauge
	activeRooms       prometheus.Gauge

	roomsOpened   *prometheus.CounterVec
	roomsClosed   *prometheus.CounterVec
	roomLifetime  *prometheus.HistogramVec
	relayed       *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	droppedFrames prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

var _ session.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Open realtime connections.",
		}),
		waiting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "waiting_connections",
			Help:      "Connections waiting in a matchmaking queue, by role.",
		}, []string{"role"}),
		pendingRendezvous: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_rendezvous",
			Help:      "Room codes with one participant waiting for a partner.",
		}),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Rooms with both seats filled.",
		}),

		roomsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_opened_total",
			Help:      "Rooms opened, by pairing strategy.",
		}, []string{"strategy"}),
		roomsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_closed_total",
			Help:      "Rooms closed, by reason.",
		}, []string{"reason"}),
		roomLifetime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "room_lifetime_seconds",
			Help:      "Time between a room opening and closing.",
			Buckets:   []float64{5, 30, 60, 300, 900, 1800, 3600},
		}, []string{"reason"}),
		relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Accepted send_message events, by mode.",
		}, []string{"mode"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Events answered with an error_message, by reason.",
		}, []string{"reason"}),
		droppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Outbound frames dropped because a client buffer was full.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status code.",
		}, []string{"method", "code"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.connections,
		m.waiting,
		m.pendingRendezvous,
		m.activeRooms,
		m.roomsOpened,
		m.roomsClosed,
		m.roomLifetime,
		m.relayed,
		m.rejections,
		m.droppedFrames,
		m.httpRequests,
		m.httpDurations,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveStats copies a manager snapshot into the gauges.
func (m *Metrics) ObserveStats(stats session.Stats) {
	m.connections.Set(float64(stats.Connections))
	m.waiting.WithLabelValues(domain.RoleConfessor.String()).Set(float64(stats.WaitingConfessors))
	m.waiting.WithLabelValues(domain.RoleListener.String()).Set(float64(stats.WaitingListeners))
	m.pendingRendezvous.Set(float64(stats.PendingRendezvous))
	m.activeRooms.Set(float64(stats.ActiveRooms))
}

func (m *Metrics) FrameDropped() {
	m.droppedFrames.Inc()
}

func (m *Metrics) RoomOpened(room domain.Room) {
	strategy := session.StrategyQueue
	if room.Manual {
		strategy = session.StrategyManual
	}
	m.roomsOpened.WithLabelValues(string(strategy)).Inc()
}

func (m *Metrics) RoomClosed(room domain.Room, reason domain.CloseReason, at time.Time) {
	m.roomsClosed.WithLabelValues(string(reason)).Inc()
	if lifetime := at.Sub(room.CreatedAt); lifetime >= 0 {
		m.roomLifetime.WithLabelValues(string(reason)).Observe(lifetime.Seconds())
	}
}

func (m *Metrics) Rejected(_ domain.ConnID, err error) {
	m.rejections.WithLabelValues(session.ReasonOf(err)).Inc()
}

func (m *Metrics) Relayed(_ domain.ConnID, mode domain.Mode) {
	m.relayed.WithLabelValues(mode.String()).Inc()
}

// InstrumentHandler counts and times requests served by next.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(m.httpDurations,
		promhttp.InstrumentHandlerCounter(m.httpRequests, next))
}
