package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/pkg/pagination"
	"github.com/oksasatya/go-clean-starter/pkg/result"
)

var productSortFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"name":      true,
	"price":     true,
	"stock":     true,
}

type ProductService struct {
	Products repo.ProductRepository
	Logger   *logrus.Logger
}

func NewProductService(products repo.ProductRepository, logger *logrus.Logger) *ProductService {
	return &ProductService{Products: products, Logger: logger}
}

func (s *ProductService) CreateProduct(ctx context.Context, in entity.NewProductInput) result.Result[*entity.Product] {
	p, err := entity.CreateProduct(in)
	if err != nil {
		return result.Fail[*entity.Product](err)
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return result.Fail[*entity.Product](err)
	}
	loggerOrStd(s.Logger).WithField("product_id", p.ID()).Info("product created")
	return result.Ok(p)
}

func (s *ProductService) GetProduct(ctx context.Context, id string) result.Result[*entity.Product] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[*entity.Product](err)
	}
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return result.Fail[*entity.Product](err)
	}
	if p == nil {
		return result.Fail[*entity.Product](errs.NotFound("product", id))
	}
	return result.Ok(p)
}

type ListProductsInput struct {
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
	Search     string
	CategoryID string
	Tag        string
	InStock    *bool
	IsActive   *bool
	MinPrice   *float64
	MaxPrice   *float64
}

func (s *ProductService) ListProducts(ctx context.Context, in ListProductsInput) result.Result[pagination.Page[*entity.Product]] {
	type page = pagination.Page[*entity.Product]
	params := pagination.Clamp(in.Page, in.Limit)
	sortBy, order, err := normalizeSort(in.SortBy, in.SortOrder, productSortFields)
	if err != nil {
		return result.Fail[page](err)
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return result.Fail[page](errs.Validation("minPrice", "minPrice must not exceed maxPrice"))
	}
	q := repo.ProductQuery{
		Filter: repo.ProductFilter{
			Search:     strings.TrimSpace(in.Search),
			CategoryID: strings.TrimSpace(in.CategoryID),
			Tag:        strings.ToLower(strings.TrimSpace(in.Tag)),
			InStock:    in.InStock,
			IsActive:   in.IsActive,
			MinPrice:   in.MinPrice,
			MaxPrice:   in.MaxPrice,
		},
		Page:      params,
		SortBy:    sortBy,
		SortOrder: order,
	}
	items, total, err := s.Products.List(ctx, q)
	if err != nil {
		return result.Fail[page](err)
	}
	return result.Ok(pagination.NewPage(items, total, params))
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in entity.ProductUpdate) result.Result[*entity.Product] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[*entity.Product](err)
	}
	if in.Empty() {
		return result.Fail[*entity.Product](errs.Validation("body", "at least one field must be provided"))
	}
	return s.mutate(ctx, id, func(p *entity.Product) (*entity.Product, error) { return p.Update(in) })
}

// AdjustStock adds delta to the stock level; the result may not go below zero.
func (s *ProductService) AdjustStock(ctx context.Context, id string, delta int) result.Result[*entity.Product] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[*entity.Product](err)
	}
	if err := entity.ValidateStockDelta(delta); err != nil {
		return result.Fail[*entity.Product](err)
	}
	p, err := s.Products.AdjustStock(ctx, id, delta)
	if err != nil {
		return result.Fail[*entity.Product](err)
	}
	return result.Ok(p)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) result.Result[struct{}] {
	id, err := validateID("id", id)
	if err != nil {
		return result.Fail[struct{}](err)
	}
	if err := s.Products.Delete(ctx, id); err != nil {
		return result.Fail[struct{}](err)
	}
	return result.Ok(struct{}{})
}

func (s *ProductService) mutate(ctx context.Context, id string, fn func(*entity.Product) (*entity.Product, error)) result.Result[*entity.Product] {
	current, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return result.Fail[*entity.Product](err)
	}
	next, err := fn(current)
	if err != nil {
		return result.Fail[*entity.Product](err)
	}
	if err := s.Products.Update(ctx, next); err != nil {
		return result.Fail[*entity.Product](err)
	}
	return result.Ok(next)
}
