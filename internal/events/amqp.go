package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"resume-matcher/internal/shared/telemetry"
)

// DefaultExchange is used when no exchange name is configured.
const DefaultExchange = "resume_matcher"

var errPublisherClosed = errors.New("amqp publisher closed")

type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	channel() (channel, error)
	Close() error
}

type amqpConn struct {
	*amqp.Connection
}

func (c amqpConn) channel() (channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// AMQPPublisher publishes JSON messages to a durable topic exchange. A publish
// that finds the connection closed redials once and retries.
type AMQPPublisher struct {
	exchange string
	dial     func() (connection, error)

	mu     sync.Mutex
	conn   connection
	closed bool
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	dial := func() (connection, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("dial amqp: %w", err)
		}
		if err := declareExchange(conn, exchange); err != nil {
			conn.Close()
			return nil, err
		}
		return amqpConn{conn}, nil
	}

	conn, err := dial()
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{exchange: exchange, dial: dial, conn: conn}, nil
}

func declareExchange(conn *amqp.Connection, exchange string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Publish marshals payload and sends it on a short-lived channel.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", routingKey, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errPublisherClosed
	}

	err = p.publishLocked(routingKey, msg)
	if !errors.Is(err, amqp.ErrClosed) || p.dial == nil {
		return err
	}

	telemetry.Warn("events.amqp.reconnect", map[string]any{"routing_key": routingKey})
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	conn, err := p.dial()
	if err != nil {
		return fmt.Errorf("reconnect amqp: %w", err)
	}
	p.conn = conn
	return p.publishLocked(routingKey, msg)
}

func (p *AMQPPublisher) publishLocked(routingKey string, msg amqp.Publishing) error {
	if p.conn == nil {
		return amqp.ErrClosed
	}
	ch, err := p.conn.channel()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	defer ch.Close()
	return ch.Publish(p.exchange, routingKey, false, false, msg)
}

// Close closes the broker connection. Later publishes fail without redialing.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
