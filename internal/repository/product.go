package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a product id has no matching row.
var ErrNotFound = errors.New("product not found")

// Product is the authoritative write-store entity. ID is assigned by the
// repository on Add; CreatedAt is set once and never overwritten by Replace.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int32     `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}
