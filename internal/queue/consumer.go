package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/photoshare-api/internal/logger"
)

// SignupHandler reacts to one SignupEvent, typically by mailing a
// confirmation link.
type SignupHandler interface {
    HandleSignup(ctx context.Context, ev SignupEvent) error
}

// SignupHandlerFunc adapts a function to SignupHandler.
type SignupHandlerFunc func(ctx context.Context, ev SignupEvent) error

func (f SignupHandlerFunc) HandleSignup(ctx context.Context, ev SignupEvent) error { return f(ctx, ev) }

// StartSignupConsumer connects to RabbitMQ, declares the user.signup
// queue (durable) and passes every message to h.  It runs a reconnect
// loop with exponential backoff and returns only when ctx is cancelled.
// Messages h fails on are rejected without requeueing.
func StartSignupConsumer(ctx context.Context, url string, h SignupHandler) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            logger.Log.Warn("signup-consumer: failed to dial broker", "error", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, h)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logger.Log.Warn("signup-consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, h SignupHandler) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(10, 0, false); err != nil {
        logger.Log.Warn("signup-consumer: set QoS failed", "error", err)
    }
    if _, err := ch.QueueDeclare(SignupQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(SignupQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleMessage(ctx, d.Body, h); err != nil {
                logger.Log.Error("signup-consumer: handle message failed", "error", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleMessage(ctx context.Context, body []byte, h SignupHandler) error {
    var ev SignupEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Email == "" {
        return errors.New("signup event without email")
    }
    return h.HandleSignup(ctx, ev)
}
