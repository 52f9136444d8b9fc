package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Log(ctx context.Context, log *domain.RoomAuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *mockRepo) GetByRoomID(ctx context.Context, roomID string, limit int) ([]domain.RoomAuditLog, error) {
	args := m.Called(ctx, roomID, limit)
	logs, _ := args.Get(0).([]domain.RoomAuditLog)
	return logs, args.Error(1)
}

func (m *mockRepo) GetByEventType(ctx context.Context, eventType domain.RoomEventType, from, to time.Time) ([]domain.RoomAuditLog, error) {
	args := m.Called(ctx, eventType, from, to)
	logs, _ := args.Get(0).([]domain.RoomAuditLog)
	return logs, args.Error(1)
}

func (m *mockRepo) DeleteOlderThan(ctx context.Context, before time.Time) error {
	return m.Called(ctx, before).Error(0)
}

func (m *mockRepo) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func router(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/audit/rooms/{roomId}", h.GetRoomLogs)
	r.Get("/audit/events", h.GetEventLogs)
	return r
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetRoomLogs(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("returns entries", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByRoomID", mock.Anything, "room-abc", 10).Return([]domain.RoomAuditLog{
			*domain.NewRoomOpenedLog("room-abc", false, at),
		}, nil)

		rec := serve(router(NewHandler(repo)), "/audit/rooms/room-abc?limit=10")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"eventType":"room_opened"`)
		repo.AssertExpectations(t)
	})

	t.Run("defaults the limit", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByRoomID", mock.Anything, "room-abc", defaultLimit).Return(nil, nil)

		rec := serve(router(NewHandler(repo)), "/audit/rooms/room-abc")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"logs":[]}`, rec.Body.String())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		h := router(NewHandler(&mockRepo{}))

		assert.Equal(t, http.StatusBadRequest, serve(h, "/audit/rooms/a%20b").Code)
		assert.Equal(t, http.StatusBadRequest, serve(h, "/audit/rooms/room-abc?limit=0").Code)
		assert.Equal(t, http.StatusBadRequest, serve(h, "/audit/rooms/room-abc?limit=many").Code)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByRoomID", mock.Anything, "room-abc", defaultLimit).Return(nil, errors.New("mongo down"))

		rec := serve(router(NewHandler(repo)), "/audit/rooms/room-abc")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "mongo down")
	})
}

func TestGetEventLogs(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("defaults to the last day", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByEventType", mock.Anything, domain.EventRoomClosed, now.Add(-24*time.Hour), now).
			Return([]domain.RoomAuditLog{*domain.NewRoomClosedLog("room-x", domain.CloseBurned, time.Minute, now)}, nil)

		h := NewHandler(repo)
		h.now = func() time.Time { return now }

		rec := serve(router(h), "/audit/events?type=room_closed")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"reason":"burned"`)
		repo.AssertExpectations(t)
	})

	t.Run("explicit window", func(t *testing.T) {
		from := now.Add(-2 * time.Hour)
		repo := &mockRepo{}
		repo.On("GetByEventType", mock.Anything, domain.EventRoomOpened, from, now).Return(nil, nil)

		rec := serve(router(NewHandler(repo)),
			"/audit/events?type=room_opened&from=2026-05-01T08:00:00Z&to=2026-05-01T10:00:00Z")
		assert.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		h := router(NewHandler(&mockRepo{}))

		assert.Equal(t, http.StatusBadRequest, serve(h, "/audit/events").Code)
		assert.Equal(t, http.StatusBadRequest, serve(h, "/audit/events?type=message_sent").Code)
		assert.Equal(t, http.StatusBadRequest, serve(h, "/audit/events?type=room_opened&to=yesterday").Code)
		assert.Equal(t, http.StatusBadRequest,
			serve(h, "/audit/events?type=room_opened&from=2026-05-02T00:00:00Z&to=2026-05-01T00:00:00Z").Code)
	})
}
