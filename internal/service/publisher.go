package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/hotelmanager/hotel-booking/internal/queue"
)

// EventPublisher delivers booking lifecycle events.  Implementations must
// not panic; the ledger logs and ignores returned errors.
type EventPublisher interface {
    PublishBookingEvent(ctx context.Context, event q.BookingEvent) error
}

// QueuePublisher publishes events to RabbitMQ.  It dials per publish so a
// broker outage never leaves a broken long-lived connection behind.
type QueuePublisher struct {
    url string
    log *zap.Logger
}

// NewQueuePublisher returns a publisher for the broker at url.
func NewQueuePublisher(url string, log *zap.Logger) *QueuePublisher {
    return &QueuePublisher{url: url, log: log}
}

// PublishBookingEvent publishes event to the booking.events queue as a
// persistent JSON message.  Errors are logged and returned so the caller
// can choose to ignore them.
func (p *QueuePublisher) PublishBookingEvent(ctx context.Context, event q.BookingEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(q.BookingQueueName, true, false, false, false, nil); err != nil {
        p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         event.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.BookingQueueName, false, false, pub); err != nil {
        p.log.Warn("rabbitmq: publish failed", zap.String("type", event.Type), zap.Error(err))
        return err
    }
    return nil
}
