package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	NotifyLog   = "log"
	NotifySMTP  = "smtp"
	NotifyRedis = "redis"
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	JWTSecret       string        `env:"JWT_SECRET,       required"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	BcryptCost      int           `env:"BCRYPT_COST,      default=10"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`
	StoreDriver     string        `env:"STORE_DRIVER,     default=mongo"`
	SeedUsers       string        `env:"SEED_USERS"`

	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Notify   NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=incident_tracker"`
}

type PostgresConfig struct {
	URL string `env:"DATABASE_URL"`
}

type RedisConfig struct {
	Enabled bool   `env:"REDIS_ENABLED, default=false"`
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
}

type NotifyConfig struct {
	Driver     string        `env:"NOTIFY_DRIVER,     default=log"`
	Workers    int           `env:"NOTIFY_WORKERS,    default=2"`
	Buffer     int           `env:"NOTIFY_BUFFER,     default=256"`
	Timeout    time.Duration `env:"NOTIFY_TIMEOUT,    default=10s"`
	Recipients []string      `env:"NOTIFY_RECIPIENTS, default=admin@example.com"`
	Channel    string        `env:"NOTIFY_CHANNEL,    default=incidents.created"`

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMongo:
	case StorePostgres:
		if strings.TrimSpace(c.Postgres.URL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.Notify.Driver {
	case NotifyLog:
	case NotifySMTP:
		if c.Notify.SMTP.From == "" && c.Notify.SMTP.Username == "" {
			return fmt.Errorf("SMTP_FROM or SMTP_USERNAME is required when NOTIFY_DRIVER=%s", NotifySMTP)
		}
	case NotifyRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("REDIS_ENABLED must be true when NOTIFY_DRIVER=%s", NotifyRedis)
		}
	default:
		return fmt.Errorf("unknown NOTIFY_DRIVER %q", c.Notify.Driver)
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ShouldSeed reports whether default accounts are created on an empty
// store. Unless SEED_USERS says otherwise, only development seeds.
func (c *Config) ShouldSeed() bool {
	if v, err := strconv.ParseBool(c.SeedUsers); err == nil {
		return v
	}
	return c.IsDevelopment()
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c *Config) HTTPAddress() string {
	return ":" + c.Port
}
