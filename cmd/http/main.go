package main

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/hilthontt/burnbox/internal/domain"
	"github.com/hilthontt/burnbox/internal/infrastructure/configs"
	"github.com/hilthontt/burnbox/internal/infrastructure/events"
	"github.com/hilthontt/burnbox/internal/infrastructure/json"
	"github.com/hilthontt/burnbox/internal/infrastructure/logging"
	"github.com/hilthontt/burnbox/internal/infrastructure/messaging"
	"github.com/hilthontt/burnbox/internal/infrastructure/metrics"
	"github.com/hilthontt/burnbox/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/burnbox/internal/infrastructure/tracing"
	"github.com/hilthontt/burnbox/internal/infrastructure/ws"
	"github.com/hilthontt/burnbox/internal/persistence/db"
	"github.com/hilthontt/burnbox/internal/persistence/repository"
	"github.com/hilthontt/burnbox/internal/presentation/api"
	"github.com/hilthontt/burnbox/internal/presentation/handler/audit"
	"github.com/hilthontt/burnbox/internal/presentation/handler/health"
	sessionHandler "github.com/hilthontt/burnbox/internal/presentation/handler/session"
	"github.com/hilthontt/burnbox/internal/presentation/handler/stats"
	"github.com/hilthontt/burnbox/internal/session"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	cleanupTimeout = 10 * time.Second
)

func main() {
	bootstrap := zap.Must(zap.NewProduction()).Sugar()
	defer bootstrap.Sync()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		bootstrap.Warnw("failed to load .env file", "error", err)
	}

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		bootstrap.Fatalw("failed to load config", "path", configPath, "error", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})
	defer logger.Sync()
	json.SetLogger(logger)

	logger.Info(logging.General, logging.Startup, "configuration loaded", map[logging.ExtraKey]any{
		"ConfigPath": configPath,
		"Strategy":   cfg.Matchmaking.Strategy,
		"RolePolicy": cfg.Relay.RolePolicy,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
			ServiceName:  cfg.Tracing.ServiceName,
			Environment:  cfg.Tracing.Environment,
			OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
			SamplingRate: cfg.Tracing.SamplingRate,
		})
		if err != nil {
			logger.Fatal(logging.General, logging.Startup, "failed to initialize the tracer", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), cleanupTimeout)
			defer flushCancel()
			_ = shutdownTracer(flushCtx)
		}()
	}

	m := metrics.New()
	observers := session.Observers{m}

	var auditRepo domain.RoomAuditRepository
	var publisherDone chan struct{}
	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	defer stopPublisher()

	if cfg.Events.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.Events.RabbitMQURI, logger)
		if err != nil {
			logger.Fatal(logging.RabbitMQ, logging.Startup, "failed to connect to RabbitMQ", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer rabbitmq.Close()

		roomPublisher := events.NewRoomPublisher(rabbitmq, logger)
		publisherDone = make(chan struct{})
		go func() {
			defer close(publisherDone)
			roomPublisher.Run(publisherCtx)
		}()
		observers = append(observers, roomPublisher)

		if cfg.Audit.Enabled {
			mongoCfg := &db.MongoConfig{
				URI:      cfg.Audit.MongoURI,
				Database: cfg.Audit.Database,
			}
			client, err := db.NewMongoClient(ctx, mongoCfg, logger)
			if err != nil {
				logger.Fatal(logging.MongoDB, logging.Startup, "failed to connect to MongoDB", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
			defer db.DisconnectMongo(context.Background(), client)

			auditRepo = repository.NewRoomAuditLogRepository(db.GetDatabase(client, mongoCfg), cfg.Audit.Retention)
			prepareAuditLog(ctx, auditRepo, cfg.Audit.Retention, logger)

			roomConsumer := events.NewRoomConsumer(rabbitmq, auditRepo, logger)
			if err := roomConsumer.Listen(); err != nil {
				logger.Fatal(logging.RabbitMQ, logging.Startup, "failed to start the room consumer", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}
	}

	store := newLimiterStore(ctx, cfg, logger)
	defer store.Close()

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		Cache:            store,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	wsCore := ws.NewCore(ws.CoreOptions{
		Session: session.Options{
			Strategy:          session.Strategy(cfg.Matchmaking.Strategy),
			RolePolicy:        session.RolePolicy(cfg.Relay.RolePolicy),
			ListeningCooldown: cfg.Relay.ListeningCooldown,
			Acknowledge:       cfg.Relay.Acknowledge,
			IdleTimeout:       cfg.Matchmaking.IdleTimeout,
			Observer:          observers,
		},
		IdleSweepInterval:  cfg.Matchmaking.IdleSweepInterval,
		MaxFramesPerSecond: cfg.WebSocket.MaxFramesPerSecond,
		Logger:             logger,
		OnStats:            m.ObserveStats,
		OnDrop:             m.FrameDropped,
	})
	go wsCore.Run(ctx)

	clientCfg := ws.ClientConfig{
		SendBuffer:     cfg.WebSocket.SendBuffer,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		PongWait:       cfg.WebSocket.PongWait,
		WriteWait:      cfg.WebSocket.WriteWait,
	}

	var auditH *audit.Handler
	if auditRepo != nil {
		auditH = audit.NewHandler(auditRepo)
	}

	app := api.NewApplication(
		*cfg,
		sessionHandler.NewHandler(wsCore, ws.NewUpgrader(cfg.HTTP.AllowedOrigins), clientCfg, logger),
		health.NewHandler(),
		stats.NewHandler(wsCore),
		auditH,
		logger,
		rl,
		m,
	)

	mux := app.Mount()
	if err := app.Run(ctx, mux); err != nil {
		logger.Error(logging.General, logging.Shutdown, "server stopped with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	// Rooms close and clients get their close frames before the broker
	// and database connections go away.
	wsCore.Shutdown()
	<-wsCore.Done()

	stopPublisher()
	if publisherDone != nil {
		<-publisherDone
	}

	logger.Info(logging.General, logging.Shutdown, "shutdown complete", nil)
}

func newLimiterStore(ctx context.Context, cfg *configs.Config, logger logging.Logger) ratelimiter.GetterSetter {
	if cfg.RateLimiter.Store != configs.StoreRedis {
		return ratelimiter.NewInMemory(ratelimiter.InMemoryOptions{})
	}

	store := ratelimiter.NewRedis(ratelimiter.RedisOptions{
		Addr:     cfg.RateLimiter.RedisAddr,
		Password: cfg.RateLimiter.RedisPassword,
		DB:       cfg.RateLimiter.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.(*ratelimiter.Redis).Ping(pingCtx); err != nil {
		logger.Fatal(logging.Redis, logging.Startup, "failed to connect to Redis", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	return store
}

// prepareAuditLog creates the audit indexes and drops entries older than
// retention that the TTL index has not removed yet.
func prepareAuditLog(ctx context.Context, repo domain.RoomAuditRepository, retention time.Duration, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()

	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn(logging.MongoDB, logging.Migration, "failed to ensure audit indexes", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	if retention <= 0 {
		retention = repository.DefaultRetention
	}
	if err := repo.DeleteOlderThan(ctx, time.Now().Add(-retention)); err != nil {
		logger.Warn(logging.MongoDB, logging.Delete, "failed to prune audit logs", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
