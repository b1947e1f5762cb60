package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sonuudigital/product-catalog/internal/events"
	"github.com/sonuudigital/product-catalog/internal/logs"
	"github.com/sonuudigital/product-catalog/internal/repository"
)

var (
	// ErrProductNotFound signals the command targeted an id with no row.
	ErrProductNotFound = errors.New("product not found")
	// ErrOperationFailed signals the store reported no rows affected on a
	// replace or remove after the product was seen to exist, most likely a
	// race with a concurrent delete.
	ErrOperationFailed = errors.New("store operation affected no rows")
	// ErrInvalidInput signals the command input violates a field constraint.
	ErrInvalidInput = errors.New("invalid product input")
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 1000
)

type Repository interface {
	Add(ctx context.Context, p repository.Product) (repository.Product, error)
	Get(ctx context.Context, id string) (repository.Product, error)
	Replace(ctx context.Context, id string, p repository.Product) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
}

type Publisher interface {
	PublishCreated(ctx context.Context, ev events.ProductCreated) error
	PublishUpdated(ctx context.Context, ev events.ProductUpdated) error
	PublishDeleted(ctx context.Context, ev events.ProductDeleted) error
}

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int32   `json:"stock"`
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(in.Name) > maxNameLength {
		return fmt.Errorf("%w: name cannot exceed %d characters", ErrInvalidInput, maxNameLength)
	}
	if in.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if len(in.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description cannot exceed %d characters", ErrInvalidInput, maxDescriptionLength)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return nil
}

type CreateProductResult struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateProductResult struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DeleteProductResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Commands orchestrates the write store and the outbound publisher. Each
// command is synchronous and single-pass: mutate the store, then announce the
// committed change. An event is published if and only if the mutation
// succeeded. A publish failure after a committed write is returned to the
// caller; the write is not rolled back.
type Commands struct {
	logger    logs.Logger
	repo      Repository
	publisher Publisher
	now       func() time.Time
}

func NewCommands(logger logs.Logger, repo Repository, publisher Publisher) *Commands {
	return &Commands{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (c *Commands) CreateProduct(ctx context.Context, in ProductInput) (CreateProductResult, error) {
	if err := in.validate(); err != nil {
		return CreateProductResult{}, err
	}

	product := repository.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CreatedAt:   c.now(),
	}

	created, err := c.repo.Add(ctx, product)
	if err != nil {
		return CreateProductResult{}, fmt.Errorf("failed to create product: %w", err)
	}

	err = c.publisher.PublishCreated(ctx, events.ProductCreated{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Price:       created.Price,
		Stock:       created.Stock,
		CreatedAt:   created.CreatedAt,
	})
	if err != nil {
		c.logger.Error("product created but event publish failed", "productId", created.ID, "error", err)
		return CreateProductResult{}, err
	}

	return CreateProductResult{
		ID:        created.ID,
		Name:      created.Name,
		Price:     created.Price,
		CreatedAt: created.CreatedAt,
	}, nil
}

func (c *Commands) UpdateProduct(ctx context.Context, id string, in ProductInput) (UpdateProductResult, error) {
	if err := in.validate(); err != nil {
		return UpdateProductResult{}, err
	}

	existing, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UpdateProductResult{}, ErrProductNotFound
		}
		return UpdateProductResult{}, fmt.Errorf("failed to load product %s: %w", id, err)
	}

	replacement := repository.Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CreatedAt:   existing.CreatedAt,
	}

	replaced, err := c.repo.Replace(ctx, id, replacement)
	if err != nil {
		return UpdateProductResult{}, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	if !replaced {
		return UpdateProductResult{}, fmt.Errorf("update of product %s: %w", id, ErrOperationFailed)
	}

	updatedAt := c.now()
	err = c.publisher.PublishUpdated(ctx, events.ProductUpdated{
		ID:          replacement.ID,
		Name:        replacement.Name,
		Description: replacement.Description,
		Price:       replacement.Price,
		Stock:       replacement.Stock,
		UpdatedAt:   updatedAt,
	})
	if err != nil {
		c.logger.Error("product updated but event publish failed", "productId", id, "error", err)
		return UpdateProductResult{}, err
	}

	return UpdateProductResult{
		ID:        replacement.ID,
		Name:      replacement.Name,
		Price:     replacement.Price,
		UpdatedAt: updatedAt,
	}, nil
}

func (c *Commands) DeleteProduct(ctx context.Context, id string) (DeleteProductResult, error) {
	// Read-before-write so a missing id yields a precise not-found instead
	// of a generic failure. It does not guard against a concurrent delete
	// between the Get and the Remove.
	_, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return DeleteProductResult{}, ErrProductNotFound
		}
		return DeleteProductResult{}, fmt.Errorf("failed to load product %s: %w", id, err)
	}

	removed, err := c.repo.Remove(ctx, id)
	if err != nil {
		return DeleteProductResult{}, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if !removed {
		return DeleteProductResult{}, fmt.Errorf("delete of product %s: %w", id, ErrOperationFailed)
	}

	err = c.publisher.PublishDeleted(ctx, events.ProductDeleted{
		ID:        id,
		DeletedAt: c.now(),
	})
	if err != nil {
		c.logger.Error("product deleted but event publish failed", "productId", id, "error", err)
		return DeleteProductResult{}, err
	}

	return DeleteProductResult{
		Success: true,
		Message: fmt.Sprintf("Product %s deleted successfully", id),
	}, nil
}
