package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

// TestRabbitMQ is a disposable broker
type TestRabbitMQ struct {
	URL     string
	cleanup func()
}

// Close terminates the container
func (r *TestRabbitMQ) Close() {
	if r.cleanup != nil {
		r.cleanup()
	}
}

// NewTestRabbitMQ starts a RabbitMQ container and returns its AMQP URL
func NewTestRabbitMQ(t *testing.T) *TestRabbitMQ {
	t.Helper()

	ctx := context.Background()
	container, err := rabbitmq.Run(ctx,
		"rabbitmq:3.12-management-alpine",
		rabbitmq.WithAdminPassword("password"),
	)
	require.NoError(t, err, "Failed to start rabbitmq container")

	amqpURL, err := container.AmqpURL(ctx)
	require.NoError(t, err, "Failed to get amqp url")

	return &TestRabbitMQ{
		URL: amqpURL,
		cleanup: func() {
			if err := container.Terminate(ctx); err != nil {
				t.Logf("Failed to terminate container: %v", err)
			}
		},
	}
}
