package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/contracts"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
	"github.com/hilthontt/burnbox/internal/infrastructure/messaging"
	"github.com/hilthontt/burnbox/internal/session"
)

const (
	publishBuffer  = 128
	publishTimeout = 5 * time.Second
)

type Publisher interface {
	PublishMessage(ctx context.Context, routingKey string, message contracts.AmqpMessage) error
}

type outbound struct {
	routingKey string
	data       messaging.RoomEventData
}

// RoomPublisher turns room lifecycle hooks into broker events. The hooks
// only enqueue; Run does the publishing so the session loop never waits on
// the broker.
type RoomPublisher struct {
	session.NopObserver

	publisher Publisher
	logger    logging.Logger
	pending   chan outbound
}

var _ session.Observer = (*RoomPublisher)(nil)

func NewRoomPublisher(publisher Publisher, logger logging.Logger) *RoomPublisher {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &RoomPublisher{
		publisher: publisher,
		logger:    logger,
		pending:   make(chan outbound, publishBuffer),
	}
}

// Run publishes queued events until ctx is done, then flushes what is
// already queued.
func (p *RoomPublisher) Run(ctx context.Context) {
	for {
		select {
		case ev := <-p.pending:
			p.publish(ctx, ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-p.pending:
					p.publish(context.Background(), ev)
				default:
					return
				}
			}
		}
	}
}

func (p *RoomPublisher) RoomOpened(room domain.Room) {
	p.enqueue(outbound{
		routingKey: contracts.EventRoomOpened,
		data: messaging.RoomEventData{
			RoomID:     room.ID,
			Manual:     room.Manual,
			OccurredAt: room.CreatedAt,
		},
	})
}

func (p *RoomPublisher) RoomClosed(room domain.Room, reason domain.CloseReason, at time.Time) {
	p.enqueue(outbound{
		routingKey: contracts.EventRoomClosed,
		data: messaging.RoomEventData{
			RoomID:          room.ID,
			Manual:          room.Manual,
			Reason:          string(reason),
			LifetimeSeconds: at.Sub(room.CreatedAt).Seconds(),
			OccurredAt:      at,
		},
	})
}

func (p *RoomPublisher) PublishRoomEvent(ctx context.Context, routingKey string, data messaging.RoomEventData) error {
	roomEventJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return p.publisher.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RoomID: data.RoomID,
		Data:   roomEventJSON,
	})
}

func (p *RoomPublisher) enqueue(ev outbound) {
	select {
	case p.pending <- ev:
	default:
		p.logger.Warn(logging.RabbitMQ, logging.Publish, "publish buffer full, dropping room event", map[logging.ExtraKey]any{
			logging.RoomID: ev.data.RoomID,
			logging.Event:  ev.routingKey,
		})
	}
}

func (p *RoomPublisher) publish(ctx context.Context, ev outbound) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.PublishRoomEvent(ctx, ev.routingKey, ev.data); err != nil {
		p.logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish room event", map[logging.ExtraKey]any{
			logging.RoomID:       ev.data.RoomID,
			logging.Event:        ev.routingKey,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	p.logger.Debug(logging.RabbitMQ, logging.Publish, "room event published", map[logging.ExtraKey]any{
		logging.RoomID: ev.data.RoomID,
		logging.Event:  ev.routingKey,
	})
}
