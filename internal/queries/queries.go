package queries

import (
	"context"

	"github.com/sonuudigital/product-catalog/internal/logs"
	"github.com/sonuudigital/product-catalog/internal/search"
)

const (
	defaultPageSize   = 10
	defaultPageNumber = 1
)

type Searcher interface {
	Search(ctx context.Context, term string, pageSize, pageNumber int) ([]search.ProductDocument, error)
	GetByID(ctx context.Context, id string) (search.ProductDocument, error)
}

type DocumentCache interface {
	GetProduct(ctx context.Context, id string) (search.ProductDocument, bool, error)
	SetProduct(ctx context.Context, doc search.ProductDocument) error
}

// Queries serves the read path. It talks only to the search index (and its
// cache), never to the write store.
type Queries struct {
	logger   logs.Logger
	searcher Searcher
	cache    DocumentCache
}

func NewQueries(logger logs.Logger, searcher Searcher, cache DocumentCache) *Queries {
	return &Queries{
		logger:   logger,
		searcher: searcher,
		cache:    cache,
	}
}

// SearchProducts returns one page of documents. pageNumber is 1-based;
// non-positive paging arguments fall back to the defaults.
func (q *Queries) SearchProducts(ctx context.Context, term string, pageSize, pageNumber int) ([]search.ProductDocument, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageNumber <= 0 {
		pageNumber = defaultPageNumber
	}

	return q.searcher.Search(ctx, term, pageSize, pageNumber)
}

// GetProductByID serves point lookups through the read cache; misses fall
// through to the index and repopulate the cache best-effort.
func (q *Queries) GetProductByID(ctx context.Context, id string) (search.ProductDocument, error) {
	if q.cache != nil {
		doc, hit, err := q.cache.GetProduct(ctx, id)
		if err != nil {
			q.logger.Warn("product cache read failed", "productId", id, "error", err)
		} else if hit {
			return doc, nil
		}
	}

	doc, err := q.searcher.GetByID(ctx, id)
	if err != nil {
		return search.ProductDocument{}, err
	}

	if q.cache != nil {
		if err := q.cache.SetProduct(ctx, doc); err != nil {
			q.logger.Warn("failed to cache product", "productId", id, "error", err)
		}
	}

	return doc, nil
}
