package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string        `env:"PORT,        default=8080"`
	Env        string        `env:"ENV,         default=development"`
	LogLevel   string        `env:"LOG_LEVEL,   default=info"`
	JWTSecret  string        `env:"JWT_SECRET,  default=dev-secret-change-me"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`

	API     APIConfig
	Auth    AuthConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Tracing TracingConfig
}

// APIConfig points at the remote grading API.
type APIConfig struct {
	BaseURL string `env:"API_BASE_URL, default=http://localhost:3001"`
	// Timeout of 0 leaves calls bounded only by the request context.
	Timeout time.Duration `env:"API_TIMEOUT, default=0s"`
}

// AuthConfig holds the simulated latencies of the session store.
type AuthConfig struct {
	Latency        time.Duration `env:"AUTH_LATENCY,    default=1s"`
	ProfileLatency time.Duration `env:"PROFILE_LATENCY, default=500ms"`
}

// StorageConfig selects the backends of the user repository and of local storage.
type StorageConfig struct {
	UserStore      string `env:"USER_STORE,      default=memory"` // memory | mongo
	SessionStorage string `env:"SESSION_STORAGE, default=memory"` // memory | bolt | redis
	BoltPath       string `env:"BOLT_PATH,       default=data/portal.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=assignment_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// TracingConfig enables span export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `env:"JAEGER_ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME, default=assignment-portal"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from the given lookuper and validates the
// backend selections.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	switch c.Storage.UserStore {
	case "memory", "mongo":
	default:
		return fmt.Errorf("USER_STORE must be memory or mongo, got %q", c.Storage.UserStore)
	}
	switch c.Storage.SessionStorage {
	case "memory", "bolt", "redis":
	default:
		return fmt.Errorf("SESSION_STORAGE must be memory, bolt or redis, got %q", c.Storage.SessionStorage)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	return nil
}
