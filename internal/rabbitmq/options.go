package rabbitmq

import (
	"context"
	"errors"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type ExchangeType string

const (
	ExchangeFanout ExchangeType = "fanout"
	ExchangeTopic  ExchangeType = "topic"
	ExchangeDirect ExchangeType = "direct"
)

const defaultPrefetch = 16

// ErrUnprocessable marks a delivery that can never succeed (for example a
// malformed payload). Handlers wrap it to skip the retry schedule and send
// the message straight to the dead-letter queue.
var ErrUnprocessable = errors.New("unprocessable delivery")

// Handler processes a single delivery. A nil return acks the message; an
// error puts it through the subscription's retry schedule and, once that is
// exhausted, dead-letters it.
type Handler func(ctx context.Context, d amqp091.Delivery) error

type PublishOptions struct {
	Exchange     string
	ExchangeType ExchangeType
	RoutingKey   string
	Body         []byte
}

type SubscribeOptions struct {
	Exchange     string
	ExchangeType ExchangeType
	QueueName    string
	ConsumerTag  string
	BindingKey   string
	// Prefetch bounds the number of unacked in-flight deliveries.
	// Zero means defaultPrefetch.
	Prefetch int
	// RetryIntervals is the backoff schedule applied to a failing delivery
	// before it is dead-lettered. Empty means no retries.
	RetryIntervals []time.Duration
	Handler        Handler
}

func (o SubscribeOptions) prefetch() int {
	if o.Prefetch <= 0 {
		return defaultPrefetch
	}
	return o.Prefetch
}
