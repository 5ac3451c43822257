package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"
)

type Env string

const (
	EnvLocal  Env = "local"
	EnvDocker Env = "docker"
)

type StoreDriver string

const (
	DriverMemory   StoreDriver = "memory"
	DriverMySQL    StoreDriver = "mysql"
	DriverPostgres StoreDriver = "postgres"
	DriverMongo    StoreDriver = "mongo"
	DriverRedis    StoreDriver = "redis"
)

// Config holds the inventory service settings. Fields without envDefault get
// an environment-specific default in Load.
type Config struct {
	AppEnv Env `env:"APP_ENV" envDefault:"local"`

	GRPCAddr             string `env:"GRPC_ADDR"`
	HTTPAddr             string `env:"HTTP_ADDR"`
	EnableGRPCReflection bool   `env:"ENABLE_GRPC_REFLECTION" envDefault:"false"`

	StoreDriver     StoreDriver `env:"STORE_DRIVER" envDefault:"mysql"`
	DatabaseURL     string      `env:"DATABASE_URL"`
	DatabaseURLFile string      `env:"DATABASE_URL_FILE"`
	MongoDBName     string      `env:"MONGO_DB_NAME" envDefault:"inventory"`
	RedisAddr       string      `env:"REDIS_ADDR"`
	RedisPassword   string      `env:"REDIS_PASSWORD"`
	RedisDB         int         `env:"REDIS_DB" envDefault:"0"`
	BootstrapSchema bool        `env:"STORE_BOOTSTRAP_SCHEMA" envDefault:"false"`

	AuthAddr            string        `env:"AUTH_ADDR"`
	FSAddr              string        `env:"FS_ADDR"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"10s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.AppEnv != EnvLocal && cfg.AppEnv != EnvDocker {
		return Config{}, fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", cfg.AppEnv)
	}
	cfg.applyEnvDefaults()

	if cfg.DatabaseURLFile != "" {
		raw, err := os.ReadFile(cfg.DatabaseURLFile)
		if err != nil {
			return Config{}, fmt.Errorf("read DATABASE_URL_FILE: %w", err)
		}
		cfg.DatabaseURL = strings.TrimSpace(string(raw))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvDefaults() {
	local := c.AppEnv == EnvLocal

	setDefault(&c.GRPCAddr, local, "127.0.0.1:50051", "0.0.0.0:50051")
	setDefault(&c.HTTPAddr, local, "127.0.0.1:8080", "0.0.0.0:8080")
	setDefault(&c.AuthAddr, local, "127.0.0.1:3001", "auth")
	setDefault(&c.FSAddr, local, "127.0.0.1:3002", "fs")
	setDefault(&c.RedisAddr, local, "127.0.0.1:6379", "redis:6379")
}

func setDefault(field *string, local bool, localValue, dockerValue string) {
	if *field != "" {
		return
	}
	if local {
		*field = localValue
	} else {
		*field = dockerValue
	}
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverRedis:
	case DriverMySQL, DriverPostgres, DriverMongo:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL or DATABASE_URL_FILE is required for STORE_DRIVER=%s", c.StoreDriver)
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %s", c.StoreDriver)
	}

	if c.GRPCAddr == "" {
		return fmt.Errorf("GRPC_ADDR is required")
	}
	if c.CollaboratorTimeout <= 0 {
		return fmt.Errorf("COLLABORATOR_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Fields renders the configuration for logging with credentials masked.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("app_env", string(c.AppEnv)),
		zap.String("grpc_addr", c.GRPCAddr),
		zap.String("http_addr", c.HTTPAddr),
		zap.String("store_driver", string(c.StoreDriver)),
		zap.String("database_url", maskURL(c.DatabaseURL)),
		zap.String("redis_addr", c.RedisAddr),
		zap.String("auth_addr", c.AuthAddr),
		zap.String("fs_addr", c.FSAddr),
		zap.Duration("collaborator_timeout", c.CollaboratorTimeout),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.Bool("bootstrap_schema", c.BootstrapSchema),
		zap.Bool("grpc_reflection", c.EnableGRPCReflection),
	}
}

// maskURL hides the password of URL-style DSNs. MySQL's user:pass@tcp(...)
// form does not parse as a URL and is masked by hand.
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.User != nil {
		return u.Redacted()
	}
	at := strings.LastIndex(raw, "@")
	colon := strings.Index(raw, ":")
	if at > 0 && colon >= 0 && colon < at {
		return raw[:colon+1] + "***" + raw[at:]
	}
	return raw
}
