package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/pkg/httpclient"
)

const productsPath = "/products"

type ProductRepository struct {
	client *httpclient.Client
}

func NewProductRepository(client *httpclient.Client) *ProductRepository {
	return &ProductRepository{client: client}
}

func productPath(id string) string { return productsPath + "/" + url.PathEscape(id) }

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	res := httpclient.Post[json.RawMessage](ctx, r.client, productsPath, productToDTO(p))
	if res.IsFailure() {
		return translate(res.Err(), "product", p.ID())
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	res := httpclient.Get[productDTO](ctx, r.client, productPath(id))
	if res.IsFailure() {
		return nil, translate(res.Err(), "product", id)
	}
	return res.Data().toEntity()
}

func (r *ProductRepository) List(ctx context.Context, q repository.ProductQuery) ([]*entity.Product, int, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page.Page))
	v.Set("limit", strconv.Itoa(q.Page.Limit))
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	f := q.Filter
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.CategoryID != "" {
		v.Set("categoryId", f.CategoryID)
	}
	if f.Tag != "" {
		v.Set("tag", f.Tag)
	}
	if f.InStock != nil {
		v.Set("inStock", strconv.FormatBool(*f.InStock))
	}
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}

	res := httpclient.Get[page[productDTO]](ctx, r.client, productsPath, httpclient.WithQuery(v))
	if res.IsFailure() {
		return nil, 0, translate(res.Err(), "product", "")
	}
	p := res.Data()
	out := make([]*entity.Product, 0, len(p.Items))
	for i, d := range p.Items {
		prod, err := d.toEntity()
		if err != nil {
			return nil, 0, fmt.Errorf("product %d in remote page: %w", i, err)
		}
		out = append(out, prod)
	}
	return out, p.Total, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	res := httpclient.Put[json.RawMessage](ctx, r.client, productPath(p.ID()), productToDTO(p))
	if res.IsFailure() {
		return translate(res.Err(), "product", p.ID())
	}
	return nil
}

type stockRequest struct {
	Delta int `json:"delta"`
}

// AdjustStock leaves the arithmetic to the remote service, which owns the
// stock level.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*entity.Product, error) {
	res := httpclient.Post[productDTO](ctx, r.client, productPath(id)+"/stock", stockRequest{Delta: delta})
	if res.IsFailure() {
		return nil, translate(res.Err(), "product", id)
	}
	return res.Data().toEntity()
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res := httpclient.Delete[json.RawMessage](ctx, r.client, productPath(id))
	if res.IsFailure() {
		return translate(res.Err(), "product", id)
	}
	return nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
