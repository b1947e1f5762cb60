package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/sonuudigital/product-catalog/internal/logs"
)

const (
	maxPublishRetries    = 3
	publishRetryBackoff  = 100 * time.Millisecond
	deliveryTimeout      = 30 * time.Second
	failedToReconnectMsg = "failed to reconnect: %w"
)

// connectionManager is shared by the publisher, the health check, and every
// subscriber goroutine. mu guards the connection and channel pointers;
// reconnectMu serializes reconnect attempts so that after an outage only one
// goroutine dials and the rest reuse the restored connection.
type connectionManager struct {
	logger logs.Logger
	url    string

	mu         sync.Mutex
	connection *amqp091.Connection
	channel    *amqp091.Channel

	reconnectMu sync.Mutex
}

func newConnectionManager(logger logs.Logger, url string) (*connectionManager, error) {
	manager := &connectionManager{
		logger: logger,
		url:    url,
	}

	if err := manager.connect(); err != nil {
		return nil, err
	}

	return manager, nil
}

func (cm *connectionManager) connect() error {
	conn, err := amqp091.Dial(cm.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	cm.mu.Lock()
	old := cm.connection
	cm.connection = conn
	cm.channel = ch
	cm.mu.Unlock()

	if old != nil {
		old.Close()
	}

	cm.logger.Info("connected to RabbitMQ")
	return nil
}

func (cm *connectionManager) getChannel() *amqp091.Channel {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.channel
}

func (cm *connectionManager) isOpen() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.connection != nil && !cm.connection.IsClosed()
}

func (cm *connectionManager) reconnect(ctx context.Context) error {
	cm.reconnectMu.Lock()
	defer cm.reconnectMu.Unlock()

	// Another goroutine may have restored the connection while this one
	// waited on the lock. Reuse it instead of dialing a second time.
	if cm.isOpen() {
		return nil
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second
	maxAttempts := 10
	attempts := 0

	for {
		attempts++
		if attempts > maxAttempts {
			return fmt.Errorf("max reconnection attempts reached: %d", maxAttempts)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			cm.logger.Info("attempting to reconnect to RabbitMQ", "attempt", attempts, "backoff", backoff)

			if err := cm.connect(); err != nil {
				cm.logger.Error("failed to reconnect", "error", err, "attempt", attempts, "nextRetry", backoff*2)

				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}

			cm.logger.Info("successfully reconnected to RabbitMQ")
			return nil
		}
	}
}

func (cm *connectionManager) isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if !cm.isOpen() || cm.getChannel() == nil {
		return true
	}

	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Code == amqp091.ChannelError || amqpErr.Code == amqp091.ConnectionForced
	}

	return errors.Is(err, amqp091.ErrClosed)
}

func (cm *connectionManager) Close() {
	cm.mu.Lock()
	ch := cm.channel
	conn := cm.connection
	cm.channel = nil
	cm.connection = nil
	cm.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	if conn != nil {
		conn.Close()
	}
	cm.logger.Info("rabbitmq connection manager closed")
}

// Ping reports whether the underlying connection is still open.
func (cm *connectionManager) Ping() error {
	if !cm.isOpen() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	return nil
}

func (cm *connectionManager) shouldReturn(err error, attempt, maxRetries int) bool {
	return !cm.isConnectionError(err) || attempt == maxRetries
}

func (cm *connectionManager) tryReconnect(ctx context.Context) error {
	if err := cm.reconnect(ctx); err != nil {
		return fmt.Errorf(failedToReconnectMsg, err)
	}
	return nil
}

func (cm *connectionManager) retryWithReconnect(ctx context.Context, opName string, op func() error) error {
	for attempt := 1; attempt <= maxPublishRetries; attempt++ {
		if err := op(); err != nil {
			if cm.shouldReturn(err, attempt, maxPublishRetries) {
				return err
			}
			cm.logger.Warn(opName+": transient error, attempting reconnect", "attempt", attempt, "error", err)
			if err := cm.tryReconnect(ctx); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(publishRetryBackoff * time.Duration(attempt)):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("%s failed after %d retries", opName, maxPublishRetries)
}

func (cm *connectionManager) consumeMessages(ctx context.Context, msgs <-chan amqp091.Delivery, opts SubscribeOptions) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("rabbitmq channel closed for consumer %s", opts.ConsumerTag)
			}
			go cm.handleDelivery(ctx, d, opts)
		}
	}
}

// handleDelivery runs the handler once plus one attempt per retry interval.
// Exhausted or unprocessable deliveries are nacked without requeue, which
// routes them to the dead-letter queue declared for the subscription.
func (cm *connectionManager) handleDelivery(ctx context.Context, d amqp091.Delivery, opts SubscribeOptions) {
	err := cm.attemptDelivery(ctx, d, opts.Handler)
	if err == nil {
		return
	}

	if errors.Is(err, ErrUnprocessable) {
		cm.logger.Error("dropping unprocessable delivery", "consumerTag", opts.ConsumerTag, "error", err)
		_ = d.Nack(false, false)
		return
	}

	for attempt, interval := range opts.RetryIntervals {
		cm.logger.Warn("delivery failed, scheduling retry",
			"consumerTag", opts.ConsumerTag,
			"attempt", attempt+1,
			"retryIn", interval,
			"error", err,
		)

		select {
		case <-ctx.Done():
			// Shutting down mid-retry: requeue so the message is
			// redelivered after restart.
			_ = d.Nack(false, true)
			return
		case <-time.After(interval):
		}

		err = cm.attemptDelivery(ctx, d, opts.Handler)
		if err == nil {
			return
		}
		if errors.Is(err, ErrUnprocessable) {
			break
		}
	}

	cm.logger.Error("delivery failed after all retries, dead-lettering",
		"consumerTag", opts.ConsumerTag,
		"error", err,
	)
	_ = d.Nack(false, false)
}

func (cm *connectionManager) attemptDelivery(ctx context.Context, d amqp091.Delivery, handler Handler) error {
	handlerCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := handler(handlerCtx, d); err != nil {
		return err
	}
	return d.Ack(false)
}
