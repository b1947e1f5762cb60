package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sonuudigital/product-catalog/internal/rabbitmq"
)

// Broker is the slice of the rabbitmq client the publisher needs.
type Broker interface {
	Publish(ctx context.Context, opts rabbitmq.PublishOptions) error
}

// Publisher announces committed product mutations on the product-events topic
// exchange. It must only be invoked after the write-store mutation succeeded;
// a publish failure is returned to the caller, never swallowed. There is no
// cross-system transaction: a failed publish after a committed write leaves
// the read model stale until reconciled.
type Publisher struct {
	broker Broker
}

func NewPublisher(broker Broker) *Publisher {
	return &Publisher{broker: broker}
}

func (p *Publisher) PublishCreated(ctx context.Context, ev ProductCreated) error {
	return p.publish(ctx, KindCreated, ev)
}

func (p *Publisher) PublishUpdated(ctx context.Context, ev ProductUpdated) error {
	return p.publish(ctx, KindUpdated, ev)
}

func (p *Publisher) PublishDeleted(ctx context.Context, ev ProductDeleted) error {
	return p.publish(ctx, KindDeleted, ev)
}

func (p *Publisher) publish(ctx context.Context, kind Kind, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", kind, err)
	}

	err = p.broker.Publish(ctx, rabbitmq.PublishOptions{
		Exchange:     ProductExchangeName,
		ExchangeType: rabbitmq.ExchangeTopic,
		RoutingKey:   kind.RoutingKey(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}

	return nil
}
