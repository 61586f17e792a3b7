package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// RoleStaleAfter is how long a confirmed role is trusted before the
	// session is forced back through authentication.
	RoleStaleAfter time.Duration `env:"ROLE_STALE_AFTER, default=24h"`

	// ResendCooldownSeconds disables the resend action after a verification
	// message goes out.
	ResendCooldownSeconds int `env:"RESEND_COOLDOWN_SECONDS, default=60"`

	// SessionIdleAfter is how long an untouched in-memory session is kept
	// before the registry evicts it; a returning device restores from its
	// persisted credential record.
	SessionIdleAfter time.Duration `env:"SESSION_IDLE_AFTER, default=12h"`

	Backend BackendConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL, default=http://localhost:9000"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT,  default=10s"`
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DB,  default=civicfix_gateway"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT, default=10s"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL_SIZE, default=50"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=20"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(log zerolog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		panic(err)
	}
	return &cfg
}
