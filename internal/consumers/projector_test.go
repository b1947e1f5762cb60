package consumers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sonuudigital/product-catalog/internal/events"
	"github.com/sonuudigital/product-catalog/internal/logs"
	"github.com/sonuudigital/product-catalog/internal/rabbitmq"
	"github.com/sonuudigital/product-catalog/internal/search"
)

type MockSubscriber struct {
	mock.Mock
}

func (m *MockSubscriber) Subscribe(ctx context.Context, opts rabbitmq.SubscribeOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

type MockSearchGateway struct {
	mock.Mock
}

func (m *MockSearchGateway) Upsert(ctx context.Context, doc search.ProductDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockSearchGateway) RemoveByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestProjector(subscriber Subscriber, gateway SearchGateway, cache CacheInvalidator) *Projector {
	return NewProjector(logs.NewSlogLogger("ERROR"), subscriber, gateway, cache)
}

var createdAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const createdJSON = `{
	"id": "p1",
	"name": "Widget",
	"description": "A widget",
	"price": 9.99,
	"stock": 5,
	"createdAt": "2025-06-01T12:00:00Z"
}`

func TestProjectorStart(t *testing.T) {
	for _, kind := range events.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			mockSubscriber := new(MockSubscriber)
			projector := newTestProjector(mockSubscriber, new(MockSearchGateway), nil)

			mockSubscriber.On("Subscribe", mock.Anything, mock.MatchedBy(func(opts rabbitmq.SubscribeOptions) bool {
				return opts.Exchange == events.ProductExchangeName &&
					opts.ExchangeType == rabbitmq.ExchangeTopic &&
					opts.QueueName == kind.QueueName() &&
					opts.BindingKey == kind.RoutingKey() &&
					opts.Prefetch == 16 &&
					len(opts.RetryIntervals) == 3 &&
					opts.RetryIntervals[0] == 5*time.Second &&
					opts.RetryIntervals[1] == 15*time.Second &&
					opts.RetryIntervals[2] == 30*time.Second &&
					opts.Handler != nil
			})).Return(nil).Once()

			err := projector.Start(context.Background(), kind)

			assert.NoError(t, err)
			mockSubscriber.AssertExpectations(t)
		})
	}

	t.Run("SubscribeError", func(t *testing.T) {
		mockSubscriber := new(MockSubscriber)
		projector := newTestProjector(mockSubscriber, new(MockSearchGateway), nil)

		expectedErr := errors.New("subscribe failed")
		mockSubscriber.On("Subscribe", mock.Anything, mock.Anything).Return(expectedErr).Once()

		err := projector.Start(context.Background(), events.KindCreated)

		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestApplyCreated(t *testing.T) {
	expectedDoc := search.ProductDocument{
		ID:          "p1",
		Name:        "Widget",
		Description: "A widget",
		Price:       9.99,
		Stock:       5,
		CreatedAt:   createdAt,
	}

	t.Run("Success", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		projector := newTestProjector(new(MockSubscriber), mockGateway, nil)

		mockGateway.On("Upsert", mock.Anything, expectedDoc).Return(nil).Once()

		err := projector.applyCreated(context.Background(), amqp091.Delivery{Body: []byte(createdJSON)})

		assert.NoError(t, err)
		mockGateway.AssertExpectations(t)
	})

	t.Run("RedeliveryIsIdempotent", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		projector := newTestProjector(new(MockSubscriber), mockGateway, nil)

		mockGateway.On("Upsert", mock.Anything, expectedDoc).Return(nil).Twice()

		delivery := amqp091.Delivery{Body: []byte(createdJSON)}
		assert.NoError(t, projector.applyCreated(context.Background(), delivery))
		assert.NoError(t, projector.applyCreated(context.Background(), delivery))

		mockGateway.AssertExpectations(t)
	})

	t.Run("MalformedPayloadIsUnprocessable", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		projector := newTestProjector(new(MockSubscriber), mockGateway, nil)

		err := projector.applyCreated(context.Background(), amqp091.Delivery{Body: []byte("not json")})

		assert.ErrorIs(t, err, rabbitmq.ErrUnprocessable)
		mockGateway.AssertNotCalled(t, "Upsert")
	})

	t.Run("IndexErrorPropagates", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		projector := newTestProjector(new(MockSubscriber), mockGateway, nil)

		indexErr := errors.New("index unavailable")
		mockGateway.On("Upsert", mock.Anything, mock.Anything).Return(indexErr).Once()

		err := projector.applyCreated(context.Background(), amqp091.Delivery{Body: []byte(createdJSON)})

		assert.ErrorIs(t, err, indexErr)
		assert.NotErrorIs(t, err, rabbitmq.ErrUnprocessable)
	})
}

func TestApplyUpdated(t *testing.T) {
	updatedJSON := `{
		"id": "p1",
		"name": "Widget v2",
		"description": "A better widget",
		"price": 14.99,
		"stock": 3,
		"updatedAt": "2025-06-02T09:00:00Z"
	}`
	updatedAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	t.Run("UpsertsSnapshotAndInvalidatesCache", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		mockCache := new(MockInvalidator)
		projector := newTestProjector(new(MockSubscriber), mockGateway, mockCache)

		mockGateway.On("Upsert", mock.Anything, mock.MatchedBy(func(doc search.ProductDocument) bool {
			return doc.ID == "p1" && doc.Name == "Widget v2" && doc.CreatedAt.Equal(updatedAt)
		})).Return(nil).Once()
		mockCache.On("Invalidate", mock.Anything, "p1").Return(nil).Once()

		err := projector.applyUpdated(context.Background(), amqp091.Delivery{Body: []byte(updatedJSON)})

		assert.NoError(t, err)
		mockGateway.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("InvalidateFailureDoesNotFailProjection", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		mockCache := new(MockInvalidator)
		projector := newTestProjector(new(MockSubscriber), mockGateway, mockCache)

		mockGateway.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()
		mockCache.On("Invalidate", mock.Anything, "p1").Return(errors.New("redis down")).Once()

		err := projector.applyUpdated(context.Background(), amqp091.Delivery{Body: []byte(updatedJSON)})

		assert.NoError(t, err)
	})

	t.Run("IndexErrorSkipsInvalidation", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		mockCache := new(MockInvalidator)
		projector := newTestProjector(new(MockSubscriber), mockGateway, mockCache)

		indexErr := errors.New("index unavailable")
		mockGateway.On("Upsert", mock.Anything, mock.Anything).Return(indexErr).Once()

		err := projector.applyUpdated(context.Background(), amqp091.Delivery{Body: []byte(updatedJSON)})

		assert.ErrorIs(t, err, indexErr)
		mockCache.AssertNotCalled(t, "Invalidate")
	})
}

func TestApplyDeleted(t *testing.T) {
	deletedJSON := `{"id": "p1", "deletedAt": "2025-06-03T10:00:00Z"}`

	t.Run("RemovesDocumentAndInvalidatesCache", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		mockCache := new(MockInvalidator)
		projector := newTestProjector(new(MockSubscriber), mockGateway, mockCache)

		mockGateway.On("RemoveByID", mock.Anything, "p1").Return(nil).Once()
		mockCache.On("Invalidate", mock.Anything, "p1").Return(nil).Once()

		err := projector.applyDeleted(context.Background(), amqp091.Delivery{Body: []byte(deletedJSON)})

		assert.NoError(t, err)
		mockGateway.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("RedeliveryIsIdempotent", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		projector := newTestProjector(new(MockSubscriber), mockGateway, nil)

		mockGateway.On("RemoveByID", mock.Anything, "p1").Return(nil).Twice()

		delivery := amqp091.Delivery{Body: []byte(deletedJSON)}
		assert.NoError(t, projector.applyDeleted(context.Background(), delivery))
		assert.NoError(t, projector.applyDeleted(context.Background(), delivery))
	})

	t.Run("MalformedPayloadIsUnprocessable", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		projector := newTestProjector(new(MockSubscriber), mockGateway, nil)

		err := projector.applyDeleted(context.Background(), amqp091.Delivery{Body: []byte("{")})

		assert.ErrorIs(t, err, rabbitmq.ErrUnprocessable)
		mockGateway.AssertNotCalled(t, "RemoveByID")
	})

	t.Run("DeleteErrorPropagates", func(t *testing.T) {
		mockGateway := new(MockSearchGateway)
		projector := newTestProjector(new(MockSubscriber), mockGateway, nil)

		deleteErr := errors.New("index unavailable")
		mockGateway.On("RemoveByID", mock.Anything, "p1").Return(deleteErr).Once()

		err := projector.applyDeleted(context.Background(), amqp091.Delivery{Body: []byte(deletedJSON)})

		assert.ErrorIs(t, err, deleteErr)
	})
}
