package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const DefaultEventsQueue = "cinema.events"

var ErrPublisherClosed = errors.New("queue: publisher closed")

// Publisher implements the service EventNotifier on top of RabbitMQ.
// Notify never blocks the request: envelopes go to a buffer drained by one
// worker, and are dropped with a warning when the buffer is full.
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger

	buf     chan Envelope
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher starts the publishing worker. The broker is dialed lazily so
// the API can start while RabbitMQ is down.
func NewPublisher(url, queue string, buffer int, log *zap.Logger) *Publisher {
	if queue == "" {
		queue = DefaultEventsQueue
	}
	if buffer <= 0 {
		buffer = 256
	}
	p := &Publisher{
		url:     url,
		queue:   queue,
		log:     log,
		buf:     make(chan Envelope, buffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) Notify(_ context.Context, events ...model.Event) {
	for _, e := range events {
		env, err := NewEnvelope(e)
		if err != nil {
			p.log.Error("encode event", zap.String("event", e.EventName()), zap.Error(err))
			continue
		}
		select {
		case <-p.done:
			return
		default:
		}
		select {
		case p.buf <- env:
		default:
			p.log.Warn("event buffer full, dropping event",
				zap.String("event", env.Name), zap.String("event_id", env.ID))
		}
	}
}

func (p *Publisher) run() {
	defer close(p.stopped)
	for {
		select {
		case env := <-p.buf:
			p.deliver(env)
		case <-p.done:
			// flush what is already buffered
			for {
				select {
				case env := <-p.buf:
					p.deliver(env)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(env Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Publish(ctx, env); err != nil {
		p.log.Warn("publish event failed",
			zap.String("event", env.Name), zap.String("event_id", env.ID), zap.Error(err))
	}
}

// Publish sends one envelope synchronously as a persistent message on the
// default exchange.
func (p *Publisher) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         env.Name,
		Timestamp:    env.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel must be called with mu held.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close stops accepting events, flushes the buffer and closes the
// connection.
func (p *Publisher) Close() error {
	p.once.Do(func() { close(p.done) })
	<-p.stopped
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
