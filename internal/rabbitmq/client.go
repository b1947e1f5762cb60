package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/sonuudigital/product-catalog/internal/logs"
)

type Client struct {
	*connectionManager
}

func NewClient(logger logs.Logger, url string) (*Client, error) {
	manager, err := newConnectionManager(logger, url)
	if err != nil {
		return nil, err
	}
	return &Client{connectionManager: manager}, nil
}

func (c *Client) Publish(ctx context.Context, opts PublishOptions) error {
	return c.retryWithReconnect(ctx, "publish", func() error {
		ch := c.getChannel()
		if err := ensureExchange(ch, opts.Exchange, opts.ExchangeType); err != nil {
			return err
		}
		return publishMessage(ctx, ch, opts)
	})
}

// declarer is the slice of amqp091.Channel that subscription setup needs.
type declarer interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
}

func ensureExchange(ch declarer, name string, exchangeType ExchangeType) error {
	return ch.ExchangeDeclare(
		name,
		string(exchangeType),
		true,
		false,
		false,
		false,
		nil,
	)
}

func publishMessage(ctx context.Context, ch *amqp091.Channel, opts PublishOptions) error {
	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Body:         opts.Body,
		Timestamp:    time.Now(),
	}

	return ch.PublishWithContext(
		ctx,
		opts.Exchange,
		opts.RoutingKey,
		false,
		false,
		publishing,
	)
}

// Subscribe binds the handler to its queue and consumes until the context is
// cancelled, transparently resubscribing after connection loss.
func (c *Client) Subscribe(ctx context.Context, opts SubscribeOptions) error {
	for {
		ch := c.getChannel()

		if err := setupSubscription(ch, opts); err != nil {
			if !c.isConnectionError(err) {
				return fmt.Errorf("failed to setup subscription: %w", err)
			}
			c.logger.Warn("failed to setup subscription, attempting to reconnect...", "error", err)
			if reconnErr := c.reconnect(ctx); reconnErr != nil {
				return fmt.Errorf("failed to reconnect during subscription setup: %w", reconnErr)
			}
			c.logger.Info("reconnected, retrying subscription setup")
			continue
		}

		msgs, err := ch.Consume(
			opts.QueueName,
			opts.ConsumerTag,
			false,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to start consuming: %w", err)
		}

		c.logger.Info("consumer subscribed", "consumerTag", opts.ConsumerTag, "queue", opts.QueueName)

		err = c.consumeMessages(ctx, msgs, opts)

		if ctx.Err() != nil {
			c.logger.Info("context cancelled, stopping consumer", "consumerTag", opts.ConsumerTag)
			return ctx.Err()
		}

		c.logger.Warn("consumer connection lost, attempting to reconnect...", "consumerTag", opts.ConsumerTag, "error", err)

		if err := c.reconnect(ctx); err != nil {
			return fmt.Errorf(failedToReconnectMsg, err)
		}

		c.logger.Info("resubscribing consumer after reconnection", "consumerTag", opts.ConsumerTag)
	}
}

// setupSubscription declares the queue, its dead-letter path, and the binding
// to the main exchange. Each DLQ is bound with the subscription's own binding
// key: dead-lettered messages keep their original routing key, so a catch-all
// binding would fan one queue's dead letters out into every DLQ on the DLX.
func setupSubscription(ch declarer, opts SubscribeOptions) error {
	if err := ch.Qos(opts.prefetch(), 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	dlxName := opts.Exchange + ".dlx"
	dlqName := opts.QueueName + ".dlq"

	if err := ch.ExchangeDeclare(dlxName, string(ExchangeTopic), true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLX %s: %w", dlxName, err)
	}

	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ %s: %w", dlqName, err)
	}

	if err := ch.QueueBind(dlqName, opts.BindingKey, dlxName, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ to DLX: %w", err)
	}

	if err := ensureExchange(ch, opts.Exchange, opts.ExchangeType); err != nil {
		return fmt.Errorf("failed to declare main exchange %s: %w", opts.Exchange, err)
	}

	args := amqp091.Table{"x-dead-letter-exchange": dlxName}
	if _, err := ch.QueueDeclare(opts.QueueName, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", opts.QueueName, err)
	}

	if err := ch.QueueBind(opts.QueueName, opts.BindingKey, opts.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to exchange: %w", err)
	}

	return nil
}
