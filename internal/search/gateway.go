package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/sonuudigital/product-catalog/internal/logs"
)

// ErrDocumentNotFound is returned by GetByID when the index holds no
// document under the given id.
var ErrDocumentNotFound = errors.New("product document not found")

// ProductDocument is the denormalized read-model projection of a product.
// It is written only by the projection consumers and read only by queries.
type ProductDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int32     `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Client interface {
	Index(ctx context.Context, indexName string, documentID string, body []byte) (*opensearchapi.Response, error)
	Delete(ctx context.Context, indexName string, documentID string) (*opensearchapi.Response, error)
	Search(ctx context.Context, indexName string, body io.Reader) (*opensearchapi.Response, error)
	Get(ctx context.Context, indexName string, documentID string) (*opensearchapi.Response, error)
}

type Gateway struct {
	logger logs.Logger
	client Client
	index  string
}

func NewGateway(logger logs.Logger, client Client, index string) (*Gateway, error) {
	if logger == nil {
		return nil, errors.New("logger is nil")
	}
	if client == nil {
		return nil, errors.New("opensearch client is nil")
	}
	if index == "" {
		return nil, errors.New("index name is empty")
	}

	return &Gateway{
		logger: logger,
		client: client,
		index:  index,
	}, nil
}

// Upsert overwrites the document keyed by doc.ID. Last writer wins; there is
// no merge, which is what makes redelivered events safe to apply.
func (g *Gateway) Upsert(ctx context.Context, doc ProductDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal product document %s: %w", doc.ID, err)
	}

	res, err := g.client.Index(ctx, g.index, doc.ID, body)
	if err != nil {
		return fmt.Errorf("failed to index product document %s: %w", doc.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch returned %s indexing product document %s", res.Status(), doc.ID)
	}

	return nil
}

// RemoveByID deletes the document. A missing document is treated as success
// so redelivered delete events stay idempotent.
func (g *Gateway) RemoveByID(ctx context.Context, id string) error {
	res, err := g.client.Delete(ctx, g.index, id)
	if err != nil {
		return fmt.Errorf("failed to delete product document %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("opensearch returned %s deleting product document %s", res.Status(), id)
	}

	return nil
}

type query map[string]any

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source ProductDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns one page of documents. With a term, ranking is by relevance
// with name weighted 3x over description, ties broken by createdAt
// descending; without a term, ordering is createdAt descending.
// pageNumber is 1-based.
func (g *Gateway) Search(ctx context.Context, term string, pageSize, pageNumber int) ([]ProductDocument, error) {
	from := (pageNumber - 1) * pageSize

	searchQuery := query{
		"from": from,
		"size": pageSize,
	}

	if term == "" {
		searchQuery["query"] = query{"match_all": query{}}
		searchQuery["sort"] = []any{
			query{"createdAt": query{"order": "desc"}},
		}
	} else {
		searchQuery["query"] = query{
			"multi_match": query{
				"query":  term,
				"fields": []string{"name^3", "description"},
			},
		}
		searchQuery["sort"] = []any{
			"_score",
			query{"createdAt": query{"order": "desc"}},
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery); err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := g.client.Search(ctx, g.index, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to execute product search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("opensearch returned %s searching products", res.Status())
	}

	var searchRes searchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchRes); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	documents := make([]ProductDocument, len(searchRes.Hits.Hits))
	for i, hit := range searchRes.Hits.Hits {
		documents[i] = hit.Source
	}

	return documents, nil
}

type getResponse struct {
	Found  bool            `json:"found"`
	Source ProductDocument `json:"_source"`
}

// GetByID is a direct point read against the index.
func (g *Gateway) GetByID(ctx context.Context, id string) (ProductDocument, error) {
	res, err := g.client.Get(ctx, g.index, id)
	if err != nil {
		return ProductDocument{}, fmt.Errorf("failed to get product document %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ProductDocument{}, ErrDocumentNotFound
	}

	if res.IsError() {
		return ProductDocument{}, fmt.Errorf("opensearch returned %s getting product document %s", res.Status(), id)
	}

	var getRes getResponse
	if err := json.NewDecoder(res.Body).Decode(&getRes); err != nil {
		return ProductDocument{}, fmt.Errorf("failed to decode get response: %w", err)
	}

	if !getRes.Found {
		return ProductDocument{}, ErrDocumentNotFound
	}

	return getRes.Source, nil
}
