package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/photoshare-api/internal/logger"
)

// Notifier hands a SignupEvent to whatever delivers confirmation mail.
type Notifier interface {
    NotifySignup(ctx context.Context, ev SignupEvent) error
}

// Publisher publishes events to RabbitMQ.  Each call dials the broker,
// declares the queue and publishes one persistent message; errors are
// logged and returned so the caller can choose to ignore them.
type Publisher struct {
    URL string
}

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// NotifySignup publishes ev to the user.signup queue.
func (p *Publisher) NotifySignup(ctx context.Context, ev SignupEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        logger.Log.Error("rabbitmq dial failed", "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logger.Log.Error("rabbitmq channel open failed", "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        SignupQueue, // name
        true,        // durable
        false,       // autoDelete
        false,       // exclusive
        false,       // noWait
        nil,         // args
    ); err != nil {
        logger.Log.Error("rabbitmq queue declare failed", "error", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", SignupQueue, false, false, pub); err != nil {
        logger.Log.Error("rabbitmq publish failed", "error", err)
        return err
    }
    return nil
}

// InProcess delivers events straight to a handler on a background
// goroutine.  It is used when no broker is configured.
type InProcess struct {
    Handler SignupHandler
    Timeout time.Duration
}

// NotifySignup never blocks the caller; handler failures are logged.
func (n InProcess) NotifySignup(_ context.Context, ev SignupEvent) error {
    timeout := n.Timeout
    if timeout <= 0 {
        timeout = 30 * time.Second
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), timeout)
        defer cancel()
        if err := n.Handler.HandleSignup(ctx, ev); err != nil {
            logger.Log.Error("signup notification failed", "email", ev.Email, "error", err)
        }
    }()
    return nil
}
