package product

import (
	"context"
	"errors"

	"github.com/sonuudigital/product-catalog/internal/commands"
	"github.com/sonuudigital/product-catalog/internal/logs"
	"github.com/sonuudigital/product-catalog/internal/repository"
	"github.com/sonuudigital/product-catalog/internal/search"
)

var (
	ErrNilLogger   = errors.New("logger is nil")
	ErrNilCommands = errors.New("command service is nil")
	ErrNilQueries  = errors.New("query service is nil")
	ErrNilLister   = errors.New("product lister is nil")
)

const (
	invalidRequestBodyTitleMsg = "Invalid Request Body"
	invalidProductTitleMsg     = "Invalid Product"
	productNotFoundTitleMsg    = "Product Not Found"
	productNotFoundBodyMsg     = "product not found"

	requestTimeoutTitleMsg      = "Request Timeout"
	internalServerErrorTitleMsg = "Internal Server Error"
)

type CommandService interface {
	CreateProduct(ctx context.Context, in commands.ProductInput) (commands.CreateProductResult, error)
	UpdateProduct(ctx context.Context, id string, in commands.ProductInput) (commands.UpdateProductResult, error)
	DeleteProduct(ctx context.Context, id string) (commands.DeleteProductResult, error)
}

type QueryService interface {
	SearchProducts(ctx context.Context, term string, pageSize, pageNumber int) ([]search.ProductDocument, error)
	GetProductByID(ctx context.Context, id string) (search.ProductDocument, error)
}

// ProductLister reads the authoritative write store directly, bypassing the
// search index. It backs the listing endpoint, which must reflect committed
// writes immediately rather than eventually.
type ProductLister interface {
	ListAll(ctx context.Context) ([]repository.Product, error)
}

type Handler struct {
	logger   logs.Logger
	commands CommandService
	queries  QueryService
	lister   ProductLister
}

func NewHandler(logger logs.Logger, commandService CommandService, queryService QueryService, lister ProductLister) (*Handler, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if commandService == nil {
		return nil, ErrNilCommands
	}
	if queryService == nil {
		return nil, ErrNilQueries
	}
	if lister == nil {
		return nil, ErrNilLister
	}

	return &Handler{
		logger:   logger,
		commands: commandService,
		queries:  queryService,
		lister:   lister,
	}, nil
}
