package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/contracts"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
	"github.com/hilthontt/burnbox/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

type Consumer interface {
	ConsumeMessages(queueName string, handler messaging.MessageHandler) error
}

type RoomConsumer struct {
	consumer Consumer
	repo     domain.RoomAuditRepository
	logger   logging.Logger
}

func NewRoomConsumer(consumer Consumer, repo domain.RoomAuditRepository, logger logging.Logger) *RoomConsumer {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &RoomConsumer{
		consumer: consumer,
		repo:     repo,
		logger:   logger,
	}
}

// Listen subscribes to the rooms queue and writes one audit log per event.
func (c *RoomConsumer) Listen() error {
	return c.consumer.ConsumeMessages(messaging.RoomsQueue, c.handle)
}

func (c *RoomConsumer) handle(ctx context.Context, msg amqp091.Delivery) error {
	var message contracts.AmqpMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	var payload messaging.RoomEventData
	if err := json.Unmarshal(message.Data, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal room event: %w", err)
	}

	var log *domain.RoomAuditLog
	switch msg.RoutingKey {
	case contracts.EventRoomOpened:
		log = domain.NewRoomOpenedLog(payload.RoomID, payload.Manual, payload.OccurredAt)
	case contracts.EventRoomClosed:
		lifetime := time.Duration(payload.LifetimeSeconds * float64(time.Second))
		log = domain.NewRoomClosedLog(payload.RoomID, domain.CloseReason(payload.Reason), lifetime, payload.OccurredAt)
	default:
		return fmt.Errorf("unexpected routing key %q", msg.RoutingKey)
	}

	if err := c.repo.Log(ctx, log); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	c.logger.Debug(logging.RabbitMQ, logging.Consume, "room event audited", map[logging.ExtraKey]any{
		logging.RoomID: payload.RoomID,
		logging.Event:  msg.RoutingKey,
	})

	return nil
}
