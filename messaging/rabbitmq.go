package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"civiclens-be/logger"
)

const (
	ExchangeName   = "civiclens.issues"
	reconnectDelay = 5 * time.Second
)

// RabbitMQ publishes events to a durable topic exchange keyed by event type.
type RabbitMQ struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.RWMutex
	done    chan struct{}
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	r := &RabbitMQ{
		url:  url,
		done: make(chan struct{}),
	}
	if err := r.connect(); err != nil {
		return nil, err
	}
	go r.handleReconnect()
	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	r.conn = conn
	r.channel = channel
	logger.Log.Info("rabbitmq: connected")
	return nil
}

func (r *RabbitMQ) handleReconnect() {
	for {
		r.mu.RLock()
		closed := r.conn.NotifyClose(make(chan *amqp.Error, 1))
		r.mu.RUnlock()

		select {
		case <-r.done:
			return
		case err := <-closed:
			if err != nil {
				logger.Log.Warnf("rabbitmq: disconnected: %v", err)
			}
		}

		for {
			select {
			case <-r.done:
				return
			default:
			}
			r.mu.Lock()
			err := r.connect()
			r.mu.Unlock()
			if err == nil {
				break
			}
			logger.Log.Errorf("rabbitmq: reconnect failed: %v", err)
			time.Sleep(reconnectDelay)
		}
	}
}

func (r *RabbitMQ) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.channel == nil {
		return fmt.Errorf("channel not available")
	}

	err = r.channel.PublishWithContext(
		ctx,
		ExchangeName,
		string(event.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Body:         body,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
