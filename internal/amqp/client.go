// Package amqp publishes and consumes the broker messages that connect
// the API server to the background worker.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange.
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Qos limits unacked deliveries per consumer.
func (c *Client) Qos(prefetch int) error {
	return c.channel.Qos(prefetch, 0, false)
}

func (c *Client) PublishExportRequest(ctx context.Context, msg *ExportRequestMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal export request: %w", err)
	}
	if err := c.publish(ctx, TypeExportRequest, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published export request",
		"report_type", msg.ReportType,
		"time_frame", msg.TimeFrame,
		"file_name", msg.FileName,
		"queue", c.queueName)
	return nil
}

func (c *Client) PublishAlertEvent(ctx context.Context, msg *AlertEventMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}
	if err := c.publish(ctx, TypeAlertEvent, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published alert event",
		"category", msg.Category,
		"severity", msg.Severity,
		"queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, msgType string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Type:         msgType,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", msgType, err)
	}
	return nil
}

// Handlers receives routed deliveries. A handler error nacks the
// delivery back onto the queue; a malformed payload is dropped.
type Handlers struct {
	OnExportRequest func(*ExportRequestMessage) error
	OnAlertEvent    func(*AlertEventMessage) error
}

// Consume blocks processing deliveries until ctx is cancelled or the
// channel closes.
func (c *Client) Consume(ctx context.Context, handlers Handlers) error {
	deliveries, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.dispatch(ctx, delivery, handlers)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, delivery amqp091.Delivery, handlers Handlers) {
	switch delivery.Type {
	case TypeExportRequest:
		msg, err := ExportRequestMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal export request", "error", err)
			delivery.Nack(false, false)
			return
		}
		if handlers.OnExportRequest == nil {
			delivery.Nack(false, false)
			return
		}
		if err := handlers.OnExportRequest(msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle export request",
				"error", err, "report_type", msg.ReportType)
			delivery.Nack(false, true)
			return
		}
		delivery.Ack(false)

	case TypeAlertEvent:
		msg, err := AlertEventMessageFromJSON(delivery.Body)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal alert event", "error", err)
			delivery.Nack(false, false)
			return
		}
		if handlers.OnAlertEvent == nil {
			delivery.Nack(false, false)
			return
		}
		if err := handlers.OnAlertEvent(msg); err != nil {
			slog.ErrorContext(ctx, "Failed to handle alert event",
				"error", err, "category", msg.Category)
			delivery.Nack(false, true)
			return
		}
		delivery.Ack(false)

	default:
		slog.WarnContext(ctx, "Dropping message with unknown type", "type", delivery.Type)
		delivery.Nack(false, false)
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ConnectWithRetry keeps dialing the broker with exponential backoff
// until it succeeds, ctx is cancelled, or a non-connection error occurs.
func ConnectWithRetry(ctx context.Context, url, exchangeName, queueName string) (*Client, error) {
	for attempt := 0; ; attempt++ {
		client, err := NewClient(url, exchangeName, queueName)
		if err == nil {
			return client, nil
		}
		if !isConnectionError(err) {
			return nil, err
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "AMQP connect failed, retrying",
			"error", err, "attempt", attempt, "wait", wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// exponentialBackoff returns the wait before reconnect attempt n,
// capped at 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether err looks like a broken broker
// connection worth a reconnect, rather than a handler failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"connection refused", "connection closed", "eof", "channel closed", "connection reset"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
