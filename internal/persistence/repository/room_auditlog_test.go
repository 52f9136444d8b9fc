package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/persistence/db"
	"github.com/hilthontt/burnbox/internal/persistence/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestRoomAuditLogRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	at := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)

	mt.Run("log inserts into the audit collection", func(mt *mtest.T) {
		repo := repository.NewRoomAuditLogRepository(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Log(ctx, domain.NewRoomOpenedLog("room-abc", true, at))
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
		assert.Equal(mt, db.RoomAuditLogsCollection, started.Command.Lookup("insert").StringValue())
	})

	mt.Run("get by room id decodes documents", func(mt *mtest.T) {
		repo := repository.NewRoomAuditLogRepository(mt.DB, 0)
		ns := mt.DB.Name() + "." + db.RoomAuditLogsCollection

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "log-2"},
				{Key: "room_id", Value: "room-abc"},
				{Key: "event_type", Value: "room_closed"},
				{Key: "timestamp", Value: at.Add(time.Minute)},
				{Key: "metadata", Value: bson.D{{Key: "reason", Value: "burned"}}},
			},
			bson.D{
				{Key: "_id", Value: "log-1"},
				{Key: "room_id", Value: "room-abc"},
				{Key: "event_type", Value: "room_opened"},
				{Key: "timestamp", Value: at},
			},
		))

		logs, err := repo.GetByRoomID(ctx, "room-abc", 0)
		require.NoError(mt, err)
		require.Len(mt, logs, 2)
		assert.Equal(mt, domain.EventRoomClosed, logs[0].EventType)
		assert.Equal(mt, "burned", logs[0].Metadata["reason"])
		assert.Equal(mt, "log-1", logs[1].ID)
		assert.True(mt, at.Equal(logs[1].Timestamp))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, int64(50), started.Command.Lookup("limit").AsInt64())
	})

	mt.Run("get by event type returns an empty slice", func(mt *mtest.T) {
		repo := repository.NewRoomAuditLogRepository(mt.DB, 0)
		ns := mt.DB.Name() + "." + db.RoomAuditLogsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		logs, err := repo.GetByEventType(ctx, domain.EventRoomOpened, at.Add(-time.Hour), at)
		require.NoError(mt, err)
		assert.NotNil(mt, logs)
		assert.Empty(mt, logs)
	})

	mt.Run("delete older than", func(mt *mtest.T) {
		repo := repository.NewRoomAuditLogRepository(mt.DB, 0)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 3}})

		require.NoError(mt, repo.DeleteOlderThan(ctx, at))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "delete", started.CommandName)
	})

	mt.Run("ensure indexes uses the retention as ttl", func(mt *mtest.T) {
		repo := repository.NewRoomAuditLogRepository(mt.DB, 48*time.Hour)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.EnsureIndexes(ctx))

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "createIndexes", started.CommandName)

		indexes, err := started.Command.Lookup("indexes").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, indexes, 3)
		ttl := indexes[2].Document().Lookup("expireAfterSeconds").AsInt64()
		assert.Equal(mt, int64(48*60*60), ttl)
	})

	mt.Run("write errors surface", func(mt *mtest.T) {
		repo := repository.NewRoomAuditLogRepository(mt.DB, 0)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.Log(ctx, domain.NewRoomClosedLog("room-abc", domain.CloseDisconnected, time.Minute, at))
		assert.Error(mt, err)
	})
}
