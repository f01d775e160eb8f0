package repository

import (
	"context"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/pkg/pagination"
)

type ProductFilter struct {
	Search     string
	CategoryID string
	Tag        string
	InStock    *bool
	IsActive   *bool
	MinPrice   *float64
	MaxPrice   *float64
}

type ProductQuery struct {
	Filter    ProductFilter
	Page      pagination.Params
	SortBy    string
	SortOrder string
}

// ProductRepository defines the interface for product persistence.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, q ProductQuery) ([]*entity.Product, int, error)
	Update(ctx context.Context, p *entity.Product) error
	// AdjustStock adds delta to the stock level in one atomic step and returns
	// the stored product. It fails with INSUFFICIENT_STOCK rather than going
	// below zero.
	AdjustStock(ctx context.Context, id string, delta int) (*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
