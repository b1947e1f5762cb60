package events

import "time"

const (
	ProductExchangeName = "product-events"

	ProductCreatedRoutingKey = "product.created"
	ProductUpdatedRoutingKey = "product.updated"
	ProductDeletedRoutingKey = "product.deleted"

	ProductCreatedQueue = "product-created-queue"
	ProductUpdatedQueue = "product-updated-queue"
	ProductDeletedQueue = "product-deleted-queue"
)

// Kind is the closed set of product event variants. Every switch over a Kind
// must handle all three cases.
type Kind int

const (
	KindCreated Kind = iota
	KindUpdated
	KindDeleted
)

// Kinds lists every variant, in the order consumers are started.
func Kinds() []Kind {
	return []Kind{KindCreated, KindUpdated, KindDeleted}
}

func (k Kind) String() string {
	switch k {
	case KindCreated:
		return "product.created"
	case KindUpdated:
		return "product.updated"
	case KindDeleted:
		return "product.deleted"
	}
	return "unknown"
}

// RoutingKey is the topic exchange routing key the event is published with.
func (k Kind) RoutingKey() string {
	switch k {
	case KindCreated:
		return ProductCreatedRoutingKey
	case KindUpdated:
		return ProductUpdatedRoutingKey
	case KindDeleted:
		return ProductDeletedRoutingKey
	}
	return ""
}

// QueueName is the queue the projection consumer for this kind binds to.
func (k Kind) QueueName() string {
	switch k {
	case KindCreated:
		return ProductCreatedQueue
	case KindUpdated:
		return ProductUpdatedQueue
	case KindDeleted:
		return ProductDeletedQueue
	}
	return ""
}

// ProductCreated carries the full field snapshot of a newly persisted product.
// Events are immutable facts: they are emitted only after the write-store
// mutation committed.
type ProductCreated struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int32     `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductUpdated carries the full replacement snapshot, not a delta, so
// consumers can apply it without reading prior state.
type ProductUpdated struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int32     `json:"stock"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductDeleted struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}
