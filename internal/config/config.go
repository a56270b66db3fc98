package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Sync      SyncConfig      `yaml:"sync"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	ExposedHeaders   string `yaml:"exposed_headers"   env:"CORS_EXPOSED_HEADERS"   env-default:"X-Request-Id,Retry-After"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"1048576"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"false"`
	// StatementTimeout is sent as the session statement_timeout. Zero leaves
	// the server default.
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DATABASE_STATEMENT_TIMEOUT" env-default:"30s"`
	// ConnectTimeout bounds how long startup keeps retrying the first ping.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DATABASE_CONNECT_TIMEOUT" env-default:"30s"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"learnsync"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-client request limits. Boolean switches are
// phrased negatively because cleanenv applies env-default to every zero
// value, which would override an explicit false from YAML.
type RateLimitConfig struct {
	Disabled        bool          `yaml:"disabled"         env:"RATE_LIMIT_DISABLED"`
	PerMinute       int           `yaml:"per_minute"       env:"RATE_LIMIT_PER_MINUTE"       env-default:"120"`
	SubmitPerMinute int           `yaml:"submit_per_minute" env:"RATE_LIMIT_SUBMIT_PER_MINUTE" env-default:"30"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}

// SyncConfig holds offline change processing and delivery settings.
type SyncConfig struct {
	Workers            int           `yaml:"workers"               env:"SYNC_WORKERS"               env-default:"4"`
	PollInterval       time.Duration `yaml:"poll_interval"         env:"SYNC_POLL_INTERVAL"         env-default:"2s"`
	TaskLease          time.Duration `yaml:"task_lease"            env:"SYNC_TASK_LEASE"            env-default:"2m"`
	MaxAttempts        int           `yaml:"max_attempts"          env:"SYNC_MAX_ATTEMPTS"          env-default:"8"`
	RetryInitial       time.Duration `yaml:"retry_initial"         env:"SYNC_RETRY_INITIAL"         env-default:"1s"`
	RetryMax           time.Duration `yaml:"retry_max"             env:"SYNC_RETRY_MAX"             env-default:"5m"`
	TaskRetention      time.Duration `yaml:"task_retention"        env:"SYNC_TASK_RETENTION"        env-default:"168h"`
	LatestVersionsTTL  time.Duration `yaml:"latest_versions_ttl"   env:"SYNC_LATEST_VERSIONS_TTL"   env-default:"5m"`
	CacheSize          int           `yaml:"cache_size"            env:"SYNC_CACHE_SIZE"            env-default:"10000"`
	DeliveryLease      time.Duration `yaml:"delivery_lease"        env:"SYNC_DELIVERY_LEASE"        env-default:"10m"`
	MaxChangesPerBatch int           `yaml:"max_changes_per_batch" env:"SYNC_MAX_CHANGES_PER_BATCH" env-default:"500"`
	ProcessBatchSize   int           `yaml:"process_batch_size"    env:"SYNC_PROCESS_BATCH_SIZE"    env-default:"100"`
	MaxPullLimit       int           `yaml:"max_pull_limit"        env:"SYNC_MAX_PULL_LIMIT"        env-default:"200"`
	DefaultPullLimit   int           `yaml:"default_pull_limit"    env:"SYNC_DEFAULT_PULL_LIMIT"    env-default:"50"`
}

// WebSocketConfig holds realtime notification settings.
type WebSocketConfig struct {
	Disabled        bool          `yaml:"disabled"           env:"WS_DISABLED"`
	PingInterval    time.Duration `yaml:"ping_interval"      env:"WS_PING_INTERVAL"      env-default:"54s"`
	PongWait        time.Duration `yaml:"pong_wait"          env:"WS_PONG_WAIT"          env-default:"60s"`
	WriteWait       time.Duration `yaml:"write_wait"         env:"WS_WRITE_WAIT"         env-default:"10s"`
	MaxMessageSize  int64         `yaml:"max_message_size"   env:"WS_MAX_MESSAGE_SIZE"   env-default:"65536"`
	SendBuffer      int           `yaml:"send_buffer"        env:"WS_SEND_BUFFER"        env-default:"64"`
	MaxConnsPerUser int           `yaml:"max_conns_per_user" env:"WS_MAX_CONNS_PER_USER" env-default:"5"`
}
