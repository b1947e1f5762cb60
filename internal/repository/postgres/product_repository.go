package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sonuudigital/product-catalog/internal/repository"
)

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

// Add persists the product under a freshly assigned id and returns the
// persisted entity.
func (r *ProductRepository) Add(ctx context.Context, p repository.Product) (repository.Product, error) {
	p.ID = uuid.NewString()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, description, price, stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Name, p.Description, p.Price, p.Stock, p.CreatedAt)
	if err != nil {
		return repository.Product{}, err
	}

	return p, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (repository.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, stock, created_at
		FROM products
		WHERE id = $1
	`, id)

	var p repository.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}

	return p, nil
}

// Replace overwrites the mutable fields of an existing row. created_at is
// deliberately excluded from the SET list. The boolean reports whether a
// matching row existed; false is "not found", not a transport error.
func (r *ProductRepository) Replace(ctx context.Context, id string, p repository.Product) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5
		WHERE id = $1
	`, id, p.Name, p.Description, p.Price, p.Stock)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *ProductRepository) Remove(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]repository.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, stock, created_at
		FROM products
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []repository.Product
	for rows.Next() {
		var p repository.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
