package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is descriptive: checkout prices and reserves stock at product level.
type Variant struct {
	Spec  string          `json:"spec"`
	Color string          `json:"color,omitempty"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Color       string          `json:"color,omitempty"`
	Spec        string          `json:"spec,omitempty"`
	Variants    []Variant       `json:"variants"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Input carries the writable fields of a product.
type Input struct {
	Name        string
	Brand       string
	Category    string
	Description string
	Price       decimal.Decimal
	Stock       int
	Color       string
	Spec        string
	Variants    []Variant
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type ListFilter struct {
	Search   string
	Category string
	Brand    string
	InStock  bool
	Page     int
	Limit    int
}

// Normalize clamps paging to 1 <= page and 1 <= limit <= MaxLimit.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ListResult struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
