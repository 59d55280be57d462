// Package messaging publishes event changes to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"eventsapi/internal/domain"
)

const (
	DefaultExchange = "events"

	// Wait window for Return / Confirm
	publishWait = 150 * time.Millisecond

	// Buffer for late confirms and returns left behind by earlier publishes.
	notifyBuffer = 64
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements domain.EventNotifier by publishing JSON-encoded EventChange
// messages to a topic exchange with publisher confirms.
type Publisher struct {
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   amqpChannel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return

	// deliveryTag is the broker tag of the last successful publish on ch.
	deliveryTag uint64

	newMessageID func() string
}

// NewPublisher dials url, declares the topic exchange, and enables confirms.
func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	p := newPublisher(ch, exchange,
		ch.NotifyPublish(make(chan amqp.Confirmation, notifyBuffer)),
		ch.NotifyReturn(make(chan amqp.Return, notifyBuffer)),
	)
	p.conn = conn
	return p, nil
}

func newPublisher(ch amqpChannel, exchange string, confirmCh <-chan amqp.Confirmation, returnCh <-chan amqp.Return) *Publisher {
	return &Publisher{
		exchange:     exchange,
		ch:           ch,
		confirmCh:    confirmCh,
		returnCh:     returnCh,
		newMessageID: uuid.NewString,
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	return nil
}

// Notify publishes change with routing key "event.<kind>" (mandatory, persistent).
func (p *Publisher) Notify(ctx context.Context, change domain.EventChange) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode event change: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return errors.New("publisher channel not ready")
	}

	routingKey := change.RoutingKey()
	msgID := p.newMessageID()
	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    msgID,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    change.OccurredAt,
			Type:         routingKey,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.deliveryTag++

	return p.awaitConfirm(ctx, routingKey, msgID, p.deliveryTag)
}

// awaitConfirm waits for the confirm carrying tag. Confirms for older tags and returns
// for other message ids belong to earlier publishes that timed out and are skipped.
// A Return for msgID arrives before its Ack, so an Ack after a Return is still unroutable.
func (p *Publisher) awaitConfirm(ctx context.Context, routingKey, msgID string, tag uint64) error {
	timer := time.NewTimer(publishWait)
	defer timer.Stop()

	var returned *amqp.Return
	unroutable := func() error {
		return fmt.Errorf("publish %s: unroutable (%s)", returned.RoutingKey, returned.ReplyText)
	}

	for {
		select {
		case ret := <-p.returnCh:
			if ret.MessageId != msgID {
				continue
			}
			returned = &ret
		case conf := <-p.confirmCh:
			if conf.DeliveryTag < tag {
				continue
			}
			if returned == nil {
				returned = p.bufferedReturn(msgID)
			}
			if returned != nil {
				return unroutable()
			}
			if !conf.Ack {
				return fmt.Errorf("publish %s: nack", routingKey)
			}
			return nil
		case <-timer.C:
			if returned != nil {
				return unroutable()
			}
			// no confirm inside the window; treat as sent
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// bufferedReturn drains returns already delivered and reports the one for msgID, if any.
func (p *Publisher) bufferedReturn(msgID string) *amqp.Return {
	for {
		select {
		case ret := <-p.returnCh:
			if ret.MessageId == msgID {
				return &ret
			}
		default:
			return nil
		}
	}
}
