package domain

import (
	"context"
	"time"
)

// ChangeKind names a mutation that happened to an event.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// EventChange is emitted after a mutation has been persisted.
type EventChange struct {
	Kind       ChangeKind    `json:"kind"`
	Event      EventResponse `json:"event"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// RoutingKey returns the message routing key for the change, e.g. "event.created".
func (c EventChange) RoutingKey() string {
	return "event." + string(c.Kind)
}

// EventNotifier delivers EventChange notifications to interested parties.
type EventNotifier interface {
	Notify(ctx context.Context, change EventChange) error
}
