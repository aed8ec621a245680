package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"clinichat/pkg/logger"
)

const routingKey = "records.changed"

// Bridge mirrors hub events over an AMQP topic exchange so collaborating
// processes (another open client, an admin tool) observe record changes
// without polling. Events received from the exchange are re-published into
// the local hub; Origin filters out our own publishes.
type Bridge struct {
	conn   *amqp091.Connection
	hub    *Hub
	origin string

	exchange string
	queue    string
}

type envelope struct {
	ID     string `json:"id"`
	Origin string `json:"origin"`
	Key    string `json:"key"`
	TS     int64  `json:"ts"`
}

// NewBridge connects to AMQP, declares the exchange and starts both
// directions of the mirror. Callers should treat a connection error as
// non-fatal: the hub keeps working locally.
func NewBridge(ctx context.Context, url, exchange, queue string, hub *Hub) (*Bridge, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}

	b := &Bridge{
		conn:     conn,
		hub:      hub,
		origin:   uuid.NewString(),
		exchange: exchange,
		queue:    queue,
	}
	if err := b.startConsumer(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	go b.forward(ctx)
	logger.Info("notify_bridge_started", "exchange", exchange, "queue", queue)
	return b, nil
}

// forward publishes every local hub event to the exchange.
func (b *Bridge) forward(ctx context.Context) {
	events, cancel := b.hub.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Remote {
				continue
			}
			if err := b.publish(ctx, ev); err != nil {
				logger.Warn("notify_publish_failed", "key", ev.Key, "error", err)
			}
		}
	}
}

func (b *Bridge) publish(ctx context.Context, ev Event) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	env := envelope{ID: uuid.NewString(), Origin: b.origin, Key: ev.Key, TS: time.Now().UTC().UnixNano()}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, b.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    env.ID,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (b *Bridge) startConsumer(ctx context.Context) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return err
	}
	q, err := ch.QueueDeclare(b.queue, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}
	if err := ch.QueueBind(q.Name, routingKey, b.exchange, false, nil); err != nil {
		ch.Close()
		return err
	}
	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}
	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal(d.Body, &env); err != nil {
					logger.Warn("notify_bad_envelope", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				// our own publish came back around
				if env.Origin != b.origin {
					b.hub.Publish(Event{Key: env.Key, Remote: true})
				}
				_ = d.Ack(false)
			}
		}
	}()
	return nil
}

func (b *Bridge) Close() error {
	return b.conn.Close()
}
