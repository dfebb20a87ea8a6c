// Package config reads process settings from flags, HAMMER_* environment
// variables and .env files, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "HAMMER"

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Keys accepted by Require
const (
	KeyDBURL         = "db-url"
	KeyRabbitMQURL   = "rabbitmq-url"
	KeyRedisAddr     = "redis-addr"
	KeyAuthPublicKey = "auth-public-key"
)

type Config struct {
	HTTPAddr        string
	Store           string
	DBURL           string
	RabbitMQURL     string
	RedisAddr       string
	LockTimeout     time.Duration
	OutboxBatchSize int
	OutboxInterval  time.Duration
	Exchange        string
	NotifyWorkers   int
	NotifyQueueSize int
	AuthPublicKey   string
	AuthIssuer      string
	Migrate         bool
}

// LoadDotEnv loads .env.local then .env. Variables already set win, and missing files are ignored.
func LoadDotEnv() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()
}

// Load parses args on top of the environment and validates the result
func Load(name string, args []string) (*Config, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("http-addr", ":8080", "API listen address")
	fs.String("store", StorePostgres, "bid store: postgres or memory")
	fs.String(KeyDBURL, "", "Postgres connection string")
	fs.String(KeyRabbitMQURL, "", "AMQP URL")
	fs.String(KeyRedisAddr, "", "Redis address for live updates")
	fs.Duration("lock-timeout", 3*time.Second, "maximum wait for an auction lock")
	fs.Int("outbox-batch-size", 10, "events published per relay poll")
	fs.Duration("outbox-interval", time.Second, "relay polling interval")
	fs.String("exchange", "auction.events", "RabbitMQ topic exchange")
	fs.Int("notify-workers", 4, "outbid notifier workers")
	fs.Int("notify-queue-size", 1024, "outbid notifier buffer")
	fs.String(KeyAuthPublicKey, "", "path of the PEM RSA public key that verifies bearer tokens")
	fs.String("auth-issuer", "", "required token issuer, empty accepts any")
	fs.Bool("migrate", false, "apply database migrations at start-up")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		HTTPAddr:        v.GetString("http-addr"),
		Store:           v.GetString("store"),
		DBURL:           v.GetString(KeyDBURL),
		RabbitMQURL:     v.GetString(KeyRabbitMQURL),
		RedisAddr:       v.GetString(KeyRedisAddr),
		LockTimeout:     v.GetDuration("lock-timeout"),
		OutboxBatchSize: v.GetInt("outbox-batch-size"),
		OutboxInterval:  v.GetDuration("outbox-interval"),
		Exchange:        v.GetString("exchange"),
		NotifyWorkers:   v.GetInt("notify-workers"),
		NotifyQueueSize: v.GetInt("notify-queue-size"),
		AuthPublicKey:   v.GetString(KeyAuthPublicKey),
		AuthIssuer:      v.GetString("auth-issuer"),
		Migrate:         v.GetBool("migrate"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every binary depends on
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StorePostgres:
		if c.DBURL == "" {
			errs = append(errs, errors.New("db-url is required with the postgres store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	if c.LockTimeout <= 0 {
		errs = append(errs, errors.New("lock-timeout must be positive"))
	}
	if c.OutboxBatchSize <= 0 {
		errs = append(errs, errors.New("outbox-batch-size must be positive"))
	}
	if c.OutboxInterval <= 0 {
		errs = append(errs, errors.New("outbox-interval must be positive"))
	}
	if c.NotifyWorkers <= 0 || c.NotifyQueueSize <= 0 {
		errs = append(errs, errors.New("notify-workers and notify-queue-size must be positive"))
	}
	if c.Exchange == "" {
		errs = append(errs, errors.New("exchange must not be empty"))
	}
	return errors.Join(errs...)
}

// Require fails unless every key is set
func (c *Config) Require(keys ...string) error {
	var errs []error
	for _, key := range keys {
		var val string
		switch key {
		case KeyDBURL:
			val = c.DBURL
		case KeyRabbitMQURL:
			val = c.RabbitMQURL
		case KeyRedisAddr:
			val = c.RedisAddr
		case KeyAuthPublicKey:
			val = c.AuthPublicKey
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if val == "" {
			errs = append(errs, fmt.Errorf("%s is required (flag --%s or env %s)", key, key, EnvName(key)))
		}
	}
	return errors.Join(errs...)
}

// ReadAuthPublicKey returns the PEM bytes behind AuthPublicKey
func (c *Config) ReadAuthPublicKey() ([]byte, error) {
	data, err := os.ReadFile(c.AuthPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth public key: %w", err)
	}
	return data, nil
}

// EnvName is the environment variable that sets key
func EnvName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
