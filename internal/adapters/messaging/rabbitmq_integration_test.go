//go:build integration

package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"eventsapi/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPublisher_Integration(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
	}
	rabbitC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer rabbitC.Terminate(ctx)

	host, err := rabbitC.Host(ctx)
	require.NoError(t, err)
	port, err := rabbitC.MappedPort(ctx, "5672")
	require.NoError(t, err)
	url := "amqp://guest:guest@" + host + ":" + port.Port()

	p, err := NewPublisher(url, "it.events")
	require.NoError(t, err)
	defer p.Close()

	// bind a queue so the mandatory publish is routable
	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "event.*", "it.events", false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	change := domain.EventChange{
		Kind:       domain.ChangeCreated,
		Event:      domain.EventResponse{ID: 1, Title: "Conf", Location: "Hall A"},
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, p.Notify(ctx, change))

	select {
	case d := <-deliveries:
		require.Equal(t, "event.created", d.RoutingKey)
		var got domain.EventChange
		require.NoError(t, json.Unmarshal(d.Body, &got))
		require.Equal(t, int64(1), got.Event.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
	}
}
