package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
)

// defaultDialTimeout bounds the TCP connect plus AMQP handshake when the
// caller's context carries no deadline.
const defaultDialTimeout = 5 * time.Second

// Publisher sends BookingConfirmed events to a durable queue.  Each call
// dials the broker, so a broker outage only costs the events published
// while it lasts.
type Publisher struct {
	URL   string
	Queue string
}

// NewPublisher returns a Publisher for the given broker URL and queue.
func NewPublisher(url, queue string) *Publisher {
	return &Publisher{URL: url, Queue: queue}
}

// dial connects within ctx's deadline.  amqp.Dial takes no context, so
// the remaining time is handed to DefaultDial, which also applies it to
// the handshake.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := defaultDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	return amqp.DialConfig(p.URL, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
}

// PublishBookingConfirmed publishes the event for b.  Errors are logged
// and returned; the reservation controller treats them as non-fatal.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, b model.Booking) error {
	body, err := json.Marshal(NewBookingConfirmedEvent(b))
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := p.dial(ctx)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
