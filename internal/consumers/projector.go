package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/sonuudigital/product-catalog/internal/events"
	"github.com/sonuudigital/product-catalog/internal/logs"
	"github.com/sonuudigital/product-catalog/internal/rabbitmq"
	"github.com/sonuudigital/product-catalog/internal/search"
)

const projectionPrefetch = 16

// retryIntervals is the per-delivery backoff schedule before a failing
// projection is dead-lettered.
var retryIntervals = []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second}

type Subscriber interface {
	Subscribe(ctx context.Context, opts rabbitmq.SubscribeOptions) error
}

type SearchGateway interface {
	Upsert(ctx context.Context, doc search.ProductDocument) error
	RemoveByID(ctx context.Context, id string) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// Projector applies product events to the search index. One Start call per
// event kind gives each kind its own queue, so the three consumers run and
// fail independently. Applying an event never reads prior index state, which
// makes redelivery safe: upsert and remove are both last-writer-wins.
//
// Known gap: a stale created event redelivered after a later delete
// resurrects the document. Events carry no version fence to suppress that.
type Projector struct {
	logger     logs.Logger
	subscriber Subscriber
	search     SearchGateway
	cache      CacheInvalidator
}

func NewProjector(logger logs.Logger, subscriber Subscriber, searchGateway SearchGateway, cache CacheInvalidator) *Projector {
	return &Projector{
		logger:     logger,
		subscriber: subscriber,
		search:     searchGateway,
		cache:      cache,
	}
}

// Start consumes the queue bound to the given event kind until ctx is
// cancelled.
func (p *Projector) Start(ctx context.Context, kind events.Kind) error {
	handler, err := p.handlerFor(kind)
	if err != nil {
		return err
	}

	consumerTag := kind.QueueName() + "-projector-" + strconv.FormatInt(time.Now().Unix(), 10)

	return p.subscriber.Subscribe(ctx, rabbitmq.SubscribeOptions{
		Exchange:       events.ProductExchangeName,
		ExchangeType:   rabbitmq.ExchangeTopic,
		QueueName:      kind.QueueName(),
		ConsumerTag:    consumerTag,
		BindingKey:     kind.RoutingKey(),
		Prefetch:       projectionPrefetch,
		RetryIntervals: retryIntervals,
		Handler:        handler,
	})
}

func (p *Projector) handlerFor(kind events.Kind) (rabbitmq.Handler, error) {
	switch kind {
	case events.KindCreated:
		return p.applyCreated, nil
	case events.KindUpdated:
		return p.applyUpdated, nil
	case events.KindDeleted:
		return p.applyDeleted, nil
	}
	return nil, fmt.Errorf("no projection handler for event kind %d", kind)
}

func (p *Projector) applyCreated(ctx context.Context, d amqp091.Delivery) error {
	var ev events.ProductCreated
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		return fmt.Errorf("%w: malformed product created event: %s", rabbitmq.ErrUnprocessable, err)
	}

	p.logger.Info("product created event received", "productId", ev.ID, "name", ev.Name)

	doc := search.ProductDocument{
		ID:          ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		Price:       ev.Price,
		Stock:       ev.Stock,
		CreatedAt:   ev.CreatedAt,
	}

	if err := p.search.Upsert(ctx, doc); err != nil {
		p.logger.Error("failed to project product created event", "productId", ev.ID, "error", err)
		return err
	}

	p.logger.Info("product indexed", "productId", ev.ID)
	return nil
}

func (p *Projector) applyUpdated(ctx context.Context, d amqp091.Delivery) error {
	var ev events.ProductUpdated
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		return fmt.Errorf("%w: malformed product updated event: %s", rabbitmq.ErrUnprocessable, err)
	}

	p.logger.Info("product updated event received", "productId", ev.ID, "name", ev.Name)

	// The updated event carries no creation timestamp, so the rebuilt
	// document takes the update time in that slot.
	doc := search.ProductDocument{
		ID:          ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		Price:       ev.Price,
		Stock:       ev.Stock,
		CreatedAt:   ev.UpdatedAt,
	}

	if err := p.search.Upsert(ctx, doc); err != nil {
		p.logger.Error("failed to project product updated event", "productId", ev.ID, "error", err)
		return err
	}

	p.invalidateCache(ctx, ev.ID)

	p.logger.Info("product reindexed", "productId", ev.ID)
	return nil
}

func (p *Projector) applyDeleted(ctx context.Context, d amqp091.Delivery) error {
	var ev events.ProductDeleted
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		return fmt.Errorf("%w: malformed product deleted event: %s", rabbitmq.ErrUnprocessable, err)
	}

	p.logger.Info("product deleted event received", "productId", ev.ID)

	if err := p.search.RemoveByID(ctx, ev.ID); err != nil {
		p.logger.Error("failed to project product deleted event", "productId", ev.ID, "error", err)
		return err
	}

	p.invalidateCache(ctx, ev.ID)

	p.logger.Info("product removed from index", "productId", ev.ID)
	return nil
}

// invalidateCache is best-effort: a failed invalidation leaves a stale entry
// that expires with its TTL, which is not worth retrying the projection for.
func (p *Projector) invalidateCache(ctx context.Context, id string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx, id); err != nil {
		p.logger.Warn("failed to invalidate cached product", "productId", id, "error", err)
	}
}
