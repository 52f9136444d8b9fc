package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/contracts"
	"github.com/hilthontt/burnbox/internal/infrastructure/events"
	"github.com/hilthontt/burnbox/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	routingKey string
	message    contracts.AmqpMessage
}

type fakePublisher struct {
	published chan publishedMessage
	err       error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(chan publishedMessage, 16)}
}

func (p *fakePublisher) PublishMessage(_ context.Context, routingKey string, message contracts.AmqpMessage) error {
	p.published <- publishedMessage{routingKey: routingKey, message: message}
	return p.err
}

func (p *fakePublisher) next(t *testing.T) publishedMessage {
	t.Helper()
	select {
	case msg := <-p.published:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("nothing published")
		return publishedMessage{}
	}
}

type fakeConsumer struct {
	queue   string
	handler messaging.MessageHandler
}

func (c *fakeConsumer) ConsumeMessages(queueName string, handler messaging.MessageHandler) error {
	c.queue = queueName
	c.handler = handler
	return nil
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Log(ctx context.Context, log *domain.RoomAuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *mockAuditRepo) GetByRoomID(ctx context.Context, roomID string, limit int) ([]domain.RoomAuditLog, error) {
	args := m.Called(ctx, roomID, limit)
	return args.Get(0).([]domain.RoomAuditLog), args.Error(1)
}

func (m *mockAuditRepo) GetByEventType(ctx context.Context, eventType domain.RoomEventType, from, to time.Time) ([]domain.RoomAuditLog, error) {
	args := m.Called(ctx, eventType, from, to)
	return args.Get(0).([]domain.RoomAuditLog), args.Error(1)
}

func (m *mockAuditRepo) DeleteOlderThan(ctx context.Context, before time.Time) error {
	return m.Called(ctx, before).Error(0)
}

func (m *mockAuditRepo) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func decodeRoomEvent(t *testing.T, msg contracts.AmqpMessage) messaging.RoomEventData {
	t.Helper()
	var data messaging.RoomEventData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func TestRoomPublisher_PublishesLifecycle(t *testing.T) {
	pub := newFakePublisher()
	publisher := events.NewRoomPublisher(pub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go publisher.Run(ctx)

	opened := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	room := domain.Room{ID: "room-abc123xyz", Confessor: "a", Listener: "b", CreatedAt: opened}

	publisher.RoomOpened(room)
	publisher.RoomClosed(room, domain.CloseBurned, opened.Add(90*time.Second))

	first := pub.next(t)
	assert.Equal(t, contracts.EventRoomOpened, first.routingKey)
	assert.Equal(t, "room-abc123xyz", first.message.RoomID)
	openedData := decodeRoomEvent(t, first.message)
	assert.False(t, openedData.Manual)
	assert.True(t, opened.Equal(openedData.OccurredAt))

	second := pub.next(t)
	assert.Equal(t, contracts.EventRoomClosed, second.routingKey)
	closedData := decodeRoomEvent(t, second.message)
	assert.Equal(t, "burned", closedData.Reason)
	assert.InDelta(t, 90.0, closedData.LifetimeSeconds, 0.001)

	assert.NotContains(t, string(second.message.Data), `"a"`)
	assert.NotContains(t, string(second.message.Data), `"b"`)
}

func TestRoomPublisher_FlushesOnCancel(t *testing.T) {
	pub := newFakePublisher()
	pub.err = errors.New("broker down")
	publisher := events.NewRoomPublisher(pub, nil)

	publisher.RoomOpened(domain.Room{ID: "room-1"})
	publisher.RoomOpened(domain.Room{ID: "room-2"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		publisher.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Len(t, pub.published, 2)
}

func TestRoomConsumer_WritesAuditLogs(t *testing.T) {
	consumer := &fakeConsumer{}
	repo := &mockAuditRepo{}
	rc := events.NewRoomConsumer(consumer, repo, nil)
	require.NoError(t, rc.Listen())
	assert.Equal(t, messaging.RoomsQueue, consumer.queue)

	at := time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)
	repo.On("Log", mock.Anything, mock.MatchedBy(func(log *domain.RoomAuditLog) bool {
		return log.RoomID == "room-1" &&
			log.EventType == domain.EventRoomClosed &&
			log.Metadata["reason"] == "disconnected" &&
			log.Timestamp.Equal(at)
	})).Return(nil).Once()

	data, err := json.Marshal(messaging.RoomEventData{
		RoomID:          "room-1",
		Reason:          "disconnected",
		LifetimeSeconds: 300,
		OccurredAt:      at,
	})
	require.NoError(t, err)
	body, err := json.Marshal(contracts.AmqpMessage{RoomID: "room-1", Data: data})
	require.NoError(t, err)

	err = consumer.handler(context.Background(), amqp091.Delivery{
		RoutingKey: contracts.EventRoomClosed,
		Body:       body,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRoomConsumer_RejectsBadDeliveries(t *testing.T) {
	consumer := &fakeConsumer{}
	repo := &mockAuditRepo{}
	require.NoError(t, events.NewRoomConsumer(consumer, repo, nil).Listen())

	err := consumer.handler(context.Background(), amqp091.Delivery{
		RoutingKey: contracts.EventRoomOpened,
		Body:       []byte("{"),
	})
	assert.Error(t, err)

	body, err := json.Marshal(contracts.AmqpMessage{RoomID: "room-1", Data: []byte(`{"roomId":"room-1"}`)})
	require.NoError(t, err)
	err = consumer.handler(context.Background(), amqp091.Delivery{
		RoutingKey: "room.renamed",
		Body:       body,
	})
	assert.Error(t, err)

	repo.On("Log", mock.Anything, mock.Anything).Return(errors.New("mongo down")).Once()
	err = consumer.handler(context.Background(), amqp091.Delivery{
		RoutingKey: contracts.EventRoomOpened,
		Body:       body,
	})
	assert.ErrorContains(t, err, "mongo down")
	repo.AssertExpectations(t)
}
