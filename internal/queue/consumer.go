package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartServiceEventConsumer consumes service.completed events and appends one
// formatted line per event to logs/service-events.log. It runs a reconnect
// loop with capped exponential backoff and returns only when ctx is
// cancelled; bad payloads are rejected without requeue so a poison message
// cannot spin the loop.
func StartServiceEventConsumer(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			slog.Warn("service-consumer: broker dial failed", "error", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn); err != nil {
			slog.Warn("service-consumer: consume loop ended", "error", err)
		}
		_ = conn.Close()
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		slog.Warn("service-consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(serviceCompletedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(serviceCompletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleEvent(d.Body); err != nil {
				slog.Warn("service-consumer: handle event failed", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleEvent(body []byte) error {
	var ev ServiceCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "service-events.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Service completed | service_id=%d | customer_id=%d | customer=%q | type=%s | technician_id=%d\n",
		ev.CompletedAt, ev.ServiceID, ev.CustomerID, ev.CustomerName, ev.ServiceType, ev.TechnicianID)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
