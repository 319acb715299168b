package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes reservation lifecycle events.
type Publisher interface {
    Publish(ctx context.Context, ev ReservationEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED=false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }

const (
    publishDialTimeout = 2 * time.Second
    minRedialBackoff   = time.Second
    maxRedialBackoff   = 30 * time.Second
)

// ErrBrokerUnavailable is returned without dialing while the publisher is
// backing off after a failed connection attempt.
var ErrBrokerUnavailable = errors.New("rabbitmq unavailable")

// AMQPPublisher publishes events to the durable reservation.events queue.
// The connection and channel are opened lazily, reused across publishes and
// re-dialed once they have been closed by the broker.  A failed dial is
// bounded by publishDialTimeout and blocks further dials for a backoff that
// doubles up to maxRedialBackoff, so an unreachable broker costs requests
// at most one short dial per backoff window.
type AMQPPublisher struct {
    url string
    log *slog.Logger

    dial func(url string) (*amqp.Connection, error)
    now  func() time.Time

    mu       sync.Mutex
    conn     *amqp.Connection
    ch       *amqp.Channel
    backoff  time.Duration
    nextDial time.Time
}

// NewAMQPPublisher returns a publisher for the broker at url.  No
// connection is made until the first Publish.
func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
    if logger == nil {
        logger = slog.Default()
    }
    return &AMQPPublisher{url: url, log: logger, dial: dialBroker, now: time.Now}
}

func dialBroker(url string) (*amqp.Connection, error) {
    return amqp.DialConfig(url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(publishDialTimeout),
    })
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.closeLocked()
    if now := p.now(); now.Before(p.nextDial) {
        return nil, fmt.Errorf("%w: next dial in %s", ErrBrokerUnavailable, p.nextDial.Sub(now).Round(time.Millisecond))
    }
    conn, err := p.dial(p.url)
    if err != nil {
        p.backoff = min(max(2*p.backoff, minRedialBackoff), maxRedialBackoff)
        p.nextDial = p.now().Add(p.backoff)
        return nil, fmt.Errorf("dial broker: %w", err)
    }
    p.backoff, p.nextDial = 0, time.Time{}
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("open channel: %w", err)
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        ReservationQueueName, // name
        true,                 // durable
        false,                // autoDelete
        false,                // exclusive
        false,                // noWait
        nil,                  // args
    ); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, fmt.Errorf("declare queue: %w", err)
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

// Publish sends the event as a persistent JSON message.  Errors are logged
// and returned; callers treat them as non-fatal.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ReservationEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel()
    if err != nil {
        p.log.WarnContext(ctx, "rabbitmq unavailable", slog.String("error", err.Error()))
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",                   // default exchange
        ReservationQueueName, // routing key = queue name
        false,                // mandatory
        false,                // immediate
        pub,
    ); err != nil {
        p.log.WarnContext(ctx, "rabbitmq publish failed", slog.String("error", err.Error()))
        p.closeLocked()
        return err
    }
    return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    return p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() error {
    var errs []error
    if p.ch != nil {
        if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
            errs = append(errs, err)
        }
        p.ch = nil
    }
    if p.conn != nil {
        if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
            errs = append(errs, err)
        }
        p.conn = nil
    }
    return errors.Join(errs...)
}
