package configs

import (
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/burnbox/internal/infrastructure/env"
	"github.com/hilthontt/burnbox/internal/infrastructure/validate"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	StrategyQueue  = "queue"
	StrategyManual = "manual"

	RolePolicyStrict  = "strict"
	RolePolicyRelaxed = "relaxed"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Matchmaking MatchmakingConfig `koanf:"matchmaking"`
	Relay       RelayConfig       `koanf:"relay"`
	WebSocket   WebSocketConfig   `koanf:"websocket"`
	Logger      LoggerConfig      `koanf:"logger"`
	Tracing     TracingConfig     `koanf:"tracing"`
	Events      EventsConfig      `koanf:"events"`
	Audit       AuditConfig       `koanf:"audit"`
}

type HTTPConfig struct {
	Host            string        `koanf:"host"`
	Port            uint16        `koanf:"port"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	AllowedHeaders  []string      `koanf:"allowed_headers"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
	Store            string        `koanf:"store"`
	RedisAddr        string        `koanf:"redisAddr"`
	RedisPassword    string        `koanf:"redisPassword"`
	RedisDB          int           `koanf:"redisDB"`
}

type MatchmakingConfig struct {
	Strategy          string        `koanf:"strategy"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	IdleSweepInterval time.Duration `koanf:"idle_sweep_interval"`
}

type RelayConfig struct {
	RolePolicy        string        `koanf:"role_policy"`
	ListeningCooldown time.Duration `koanf:"listening_cooldown"`
	Acknowledge       bool          `koanf:"acknowledge"`
}

type WebSocketConfig struct {
	SendBuffer     int           `koanf:"send_buffer"`
	MaxMessageSize int64         `koanf:"max_message_size"`
	PongWait       time.Duration `koanf:"pong_wait"`
	WriteWait      time.Duration `koanf:"write_wait"`
	// MaxFramesPerSecond caps inbound frames per connection. Zero disables it.
	MaxFramesPerSecond int `koanf:"max_frames_per_second"`
}

type LoggerConfig struct {
	FilePath string `koanf:"file_path"`
	Encoding string `koanf:"encoding"`
	Level    string `koanf:"level"`
	Logger   string `koanf:"logger"`
}

type TracingConfig struct {
	Enabled      bool    `koanf:"enabled"`
	ServiceName  string  `koanf:"service_name"`
	Environment  string  `koanf:"environment"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SamplingRate float64 `koanf:"sampling_rate"`
}

type EventsConfig struct {
	Enabled     bool   `koanf:"enabled"`
	RabbitMQURI string `koanf:"rabbitmq_uri"`
}

type AuditConfig struct {
	Enabled   bool          `koanf:"enabled"`
	MongoURI  string        `koanf:"mongo_uri"`
	Database  string        `koanf:"database"`
	Retention time.Duration `koanf:"retention"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if it exists
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate rejects values the session core cannot run with.
func (c *Config) Validate() error {
	var errs []error

	checks := []struct {
		value     string
		validator validate.Validator
	}{
		{c.Matchmaking.Strategy, validate.Field("matchmaking.strategy", validate.OneOf(StrategyQueue, StrategyManual))},
		{c.Relay.RolePolicy, validate.Field("relay.role_policy", validate.OneOf(RolePolicyStrict, RolePolicyRelaxed))},
		{c.RateLimiter.Store, validate.Field("rateLimiter.store", validate.OneOf(StoreMemory, StoreRedis))},
		{c.Logger.Logger, validate.Field("logger.logger", validate.OneOf("zap", "zerolog"))},
	}
	for _, check := range checks {
		if err := check.validator(check.value); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Relay.ListeningCooldown <= 0 {
		errs = append(errs, errors.New("relay.listening_cooldown: must be positive"))
	}
	if c.Matchmaking.IdleTimeout < 0 {
		errs = append(errs, errors.New("matchmaking.idle_timeout: must not be negative"))
	}
	if c.Matchmaking.IdleTimeout > 0 && c.Matchmaking.IdleSweepInterval <= 0 {
		errs = append(errs, errors.New("matchmaking.idle_sweep_interval: must be positive when idle_timeout is set"))
	}
	if c.RateLimiter.Store == StoreRedis && c.RateLimiter.RedisAddr == "" {
		errs = append(errs, errors.New("rateLimiter.redisAddr: required for the redis store"))
	}
	if c.Events.Enabled && c.Events.RabbitMQURI == "" {
		errs = append(errs, errors.New("events.rabbitmq_uri: required when events are enabled"))
	}
	if c.Audit.Enabled && !c.Events.Enabled {
		errs = append(errs, errors.New("audit.enabled: requires events.enabled"))
	}
	if c.Audit.Enabled && c.Audit.MongoURI == "" {
		errs = append(errs, errors.New("audit.mongo_uri: required when audit is enabled"))
	}

	return errors.Join(errs...)
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.shutdown_timeout", 10*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})
	setDefault(k, "http.allowed_headers", []string{"Content-Type", "Authorization"})

	// Rate limiter defaults
	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")
	setDefault(k, "rateLimiter.store", StoreMemory)

	// Session defaults
	setDefault(k, "matchmaking.strategy", StrategyQueue)
	setDefault(k, "matchmaking.idle_timeout", time.Duration(0))
	setDefault(k, "matchmaking.idle_sweep_interval", 30*time.Second)
	setDefault(k, "relay.role_policy", RolePolicyStrict)
	setDefault(k, "relay.listening_cooldown", 10*time.Second)
	setDefault(k, "relay.acknowledge", true)

	// Websocket defaults
	setDefault(k, "websocket.send_buffer", 256)
	setDefault(k, "websocket.max_message_size", 4096)
	setDefault(k, "websocket.pong_wait", 60*time.Second)
	setDefault(k, "websocket.write_wait", 10*time.Second)
	setDefault(k, "websocket.max_frames_per_second", 20)

	// Logger defaults
	setDefault(k, "logger.encoding", "json")
	setDefault(k, "logger.level", "info")
	setDefault(k, "logger.logger", "zap")

	// Tracing defaults
	setDefault(k, "tracing.enabled", false)
	setDefault(k, "tracing.service_name", "burnbox")
	setDefault(k, "tracing.environment", "development")
	setDefault(k, "tracing.otlp_endpoint", "localhost:4318")
	setDefault(k, "tracing.sampling_rate", 1.0)

	// Events and audit defaults
	setDefault(k, "events.enabled", false)
	setDefault(k, "audit.enabled", false)
	setDefault(k, "audit.database", "burnbox")
	setDefault(k, "audit.retention", 30*24*time.Hour)
}

func applyEnvOverrides(k *koanf.Koanf) {
	// HTTP config from env
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	// Rate limiter config from env
	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}
	if cacheTTL := env.GetInt("RATE_LIMIT_CACHE_TTL_MINUTES", 0); cacheTTL > 0 {
		k.Set("rateLimiter.cacheTTL", time.Duration(cacheTTL)*time.Minute)
	}
	if sourceKey := env.GetString("RATE_LIMIT_SOURCE_HEADER_KEY", ""); sourceKey != "" {
		k.Set("rateLimiter.sourceHeaderKey", sourceKey)
	}
	if store := env.GetString("RATE_LIMIT_STORE", ""); store != "" {
		k.Set("rateLimiter.store", store)
	}
	if addr := env.GetString("REDIS_ADDR", ""); addr != "" {
		k.Set("rateLimiter.redisAddr", addr)
	}
	if password := env.GetString("REDIS_PASSWORD", ""); password != "" {
		k.Set("rateLimiter.redisPassword", password)
	}

	// Session config from env
	if strategy := env.GetString("MATCHMAKING_STRATEGY", ""); strategy != "" {
		k.Set("matchmaking.strategy", strategy)
	}
	if idle := env.GetDuration("MATCHMAKING_IDLE_TIMEOUT", 0); idle > 0 {
		k.Set("matchmaking.idle_timeout", idle)
	}
	if policy := env.GetString("RELAY_ROLE_POLICY", ""); policy != "" {
		k.Set("relay.role_policy", policy)
	}
	if cooldown := env.GetInt("RELAY_LISTENING_COOLDOWN_SECONDS", 0); cooldown > 0 {
		k.Set("relay.listening_cooldown", time.Duration(cooldown)*time.Second)
	}

	// Logger config from env
	if level := env.GetString("LOGGER_LEVEL", ""); level != "" {
		k.Set("logger.level", level)
	}
	if logger := env.GetString("LOGGER_LOGGER", ""); logger != "" {
		k.Set("logger.logger", logger)
	}
	if filePath := env.GetString("LOGGER_FILE_PATH", ""); filePath != "" {
		k.Set("logger.file_path", filePath)
	}

	// Tracing config from env
	if endpoint := env.GetString("OTEL_EXPORTER_OTLP_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.enabled", true)
		k.Set("tracing.otlp_endpoint", endpoint)
	}

	// Events and audit config from env
	if uri := env.GetString("RABBITMQ_URI", ""); uri != "" {
		k.Set("events.enabled", true)
		k.Set("events.rabbitmq_uri", uri)
	}
	if uri := env.GetString("MONGODB_URI", ""); uri != "" {
		k.Set("audit.enabled", true)
		k.Set("audit.mongo_uri", uri)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
