package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("test", []string{"--store", "memory"})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 3*time.Second, cfg.LockTimeout)
	assert.Equal(t, 10, cfg.OutboxBatchSize)
	assert.Equal(t, time.Second, cfg.OutboxInterval)
	assert.Equal(t, "auction.events", cfg.Exchange)
	assert.Equal(t, 4, cfg.NotifyWorkers)
	assert.Equal(t, 1024, cfg.NotifyQueueSize)
	assert.False(t, cfg.Migrate)
}

func TestLoad_EnvironmentAndFlags(t *testing.T) {
	t.Setenv("HAMMER_DB_URL", "postgres://env")
	t.Setenv("HAMMER_LOCK_TIMEOUT", "500ms")
	t.Setenv("HAMMER_NOTIFY_WORKERS", "8")
	t.Setenv("HAMMER_MIGRATE", "true")

	cfg, err := Load("test", []string{"--lock-timeout", "250ms"})
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://env", cfg.DBURL)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeout, "flags override the environment")
	assert.Equal(t, 8, cfg.NotifyWorkers)
	assert.True(t, cfg.Migrate)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "postgres without db-url", args: []string{}},
		{name: "unknown store", args: []string{"--store", "sqlite"}},
		{name: "zero lock timeout", args: []string{"--store", "memory", "--lock-timeout", "0s"}},
		{name: "zero workers", args: []string{"--store", "memory", "--notify-workers", "0"}},
		{name: "empty exchange", args: []string{"--store", "memory", "--exchange", ""}},
		{name: "unknown flag", args: []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("test", tt.args)
			assert.Error(t, err)
		})
	}
}

func TestRequire(t *testing.T) {
	cfg := &Config{RabbitMQURL: "amqp://localhost"}

	assert.NoError(t, cfg.Require(KeyRabbitMQURL))

	err := cfg.Require(KeyRabbitMQURL, KeyAuthPublicKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HAMMER_AUTH_PUBLIC_KEY")

	assert.Error(t, cfg.Require("unknown"))
}

func TestReadAuthPublicKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, []byte("pem"), 0o600))

	cfg := &Config{AuthPublicKey: path}
	data, err := cfg.ReadAuthPublicKey()
	require.NoError(t, err)
	assert.Equal(t, []byte("pem"), data)

	cfg.AuthPublicKey = filepath.Join(t.TempDir(), "missing.pem")
	_, err = cfg.ReadAuthPublicKey()
	assert.Error(t, err)
}
