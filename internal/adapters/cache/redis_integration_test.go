//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"eventsapi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisCache_Integration(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	c, err := NewRedis(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	_, found, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	e := &domain.Event{ID: 1, Title: "Conf", DateTime: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC), Location: "Hall A"}
	require.NoError(t, c.Add(ctx, e))

	got, found, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, e, got)

	require.NoError(t, c.Invalidate(ctx, 1))
	require.NoError(t, c.Add(ctx, e))
	_, found, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}
