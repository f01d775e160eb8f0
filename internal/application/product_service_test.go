package application_test

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clean-starter/internal/application"
	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/pkg/pagination"
)

func productInput() entity.NewProductInput {
	return entity.NewProductInput{
		Name:        "Desk Lamp",
		Description: "Warm white LED desk lamp",
		Price:       39.5,
		CategoryID:  "lighting",
		Stock:       3,
	}
}

func sampleProduct(t *testing.T) *entity.Product {
	t.Helper()
	p, err := entity.CreateProduct(productInput())
	require.NoError(t, err)
	return p
}

func TestProductService_CreateProduct(t *testing.T) {
	products := new(MockProductRepository)
	svc := application.NewProductService(products, quietLogger())
	products.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(nil).Once()

	res := svc.CreateProduct(context.Background(), productInput())

	require.True(t, res.IsSuccess(), "%v", res.Err())
	assert.Equal(t, "USD", res.Data().Currency())
	products.AssertExpectations(t)

	bad := productInput()
	bad.Price = -1
	res = svc.CreateProduct(context.Background(), bad)
	assert.True(t, errs.IsValidation(res.Err()))
	products.AssertNumberOfCalls(t, "Create", 1)
}

func TestProductService_GetProduct(t *testing.T) {
	products := new(MockProductRepository)
	svc := application.NewProductService(products, quietLogger())
	p := sampleProduct(t)
	products.On("GetByID", mock.Anything, p.ID()).Return(p, nil).Once()
	products.On("GetByID", mock.Anything, "99").Return(nil, errs.NotFound("product", "99")).Once()

	assert.Equal(t, p.ID(), svc.GetProduct(context.Background(), p.ID()).Data().ID())
	assert.True(t, errs.IsNotFound(svc.GetProduct(context.Background(), "99").Err()))
	assert.True(t, errs.IsValidation(svc.GetProduct(context.Background(), "").Err()))
}

func TestProductService_ListProducts(t *testing.T) {
	products := new(MockProductRepository)
	svc := application.NewProductService(products, quietLogger())
	inStock := true
	want := repo.ProductQuery{
		Filter:    repo.ProductFilter{CategoryID: "lighting", Tag: "sale", InStock: &inStock},
		Page:      pagination.Params{Page: 3, Limit: 10},
		SortBy:    "price",
		SortOrder: repo.SortAsc,
	}
	products.On("List", mock.Anything, want).Return([]*entity.Product{sampleProduct(t)}, 21, nil).Once()

	res := svc.ListProducts(context.Background(), application.ListProductsInput{
		Page: 3, Limit: 0, SortBy: "price", SortOrder: "asc",
		CategoryID: " lighting ", Tag: "SALE", InStock: &inStock,
	})

	require.True(t, res.IsSuccess(), "%v", res.Err())
	assert.Equal(t, 3, res.Data().TotalPages)
	assert.False(t, res.Data().HasNext)
	assert.True(t, res.Data().HasPrev)

	lo, hi := 10.0, 5.0
	res = svc.ListProducts(context.Background(), application.ListProductsInput{MinPrice: &lo, MaxPrice: &hi})
	assert.True(t, errs.IsValidation(res.Err()))
	res = svc.ListProducts(context.Background(), application.ListProductsInput{SortBy: "color"})
	assert.True(t, errs.IsValidation(res.Err()))
	products.AssertNumberOfCalls(t, "List", 1)
}

func TestProductService_UpdateProduct(t *testing.T) {
	products := new(MockProductRepository)
	svc := application.NewProductService(products, quietLogger())
	p := sampleProduct(t)
	name := "Floor Lamp"
	products.On("GetByID", mock.Anything, p.ID()).Return(p, nil).Once()
	products.On("Update", mock.Anything, mock.MatchedBy(func(n *entity.Product) bool { return n.Name() == name })).Return(nil).Once()

	res := svc.UpdateProduct(context.Background(), p.ID(), entity.ProductUpdate{Name: &name})

	require.True(t, res.IsSuccess())
	assert.Equal(t, "Desk Lamp", p.Name())
	assert.True(t, errs.IsValidation(svc.UpdateProduct(context.Background(), p.ID(), entity.ProductUpdate{}).Err()))
	products.AssertExpectations(t)
}

func TestProductService_AdjustStock(t *testing.T) {
	products := new(MockProductRepository)
	svc := application.NewProductService(products, quietLogger())
	p := sampleProduct(t)
	next, err := p.AdjustStock(-2)
	require.NoError(t, err)
	products.On("AdjustStock", mock.Anything, p.ID(), -2).Return(next, nil).Once()
	products.On("AdjustStock", mock.Anything, p.ID(), -10).
		Return(nil, errs.Domain(errs.CodeInsufficientStock, "insufficient stock")).Once()

	res := svc.AdjustStock(context.Background(), p.ID(), -2)
	require.True(t, res.IsSuccess())
	assert.Equal(t, 1, res.Data().Stock())

	res = svc.AdjustStock(context.Background(), p.ID(), -10)
	e, ok := errs.As(res.Err())
	require.True(t, ok)
	assert.Equal(t, errs.CodeInsufficientStock, e.Code)

	assert.True(t, errs.IsValidation(svc.AdjustStock(context.Background(), p.ID(), 0).Err()))
	assert.True(t, errs.IsValidation(svc.AdjustStock(context.Background(), p.ID(), entity.MaxStockDelta+1).Err()))
	assert.True(t, errs.IsValidation(svc.AdjustStock(context.Background(), p.ID(), math.MinInt).Err()))
	products.AssertExpectations(t)
	products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// lockedStock adjusts one product under a mutex, like a single row UPDATE.
type lockedStock struct {
	*MockProductRepository
	mu sync.Mutex
	p  *entity.Product
}

func (s *lockedStock) AdjustStock(_ context.Context, _ string, delta int) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.p.AdjustStock(delta)
	if err != nil {
		return nil, err
	}
	s.p = next
	return next, nil
}

func TestProductService_AdjustStockConcurrent(t *testing.T) {
	in := productInput()
	in.Stock = 1
	p, err := entity.CreateProduct(in)
	require.NoError(t, err)
	store := &lockedStock{MockProductRepository: new(MockProductRepository), p: p}
	svc := application.NewProductService(store, quietLogger())

	var wg sync.WaitGroup
	var sold, refused atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := svc.AdjustStock(context.Background(), p.ID(), -1)
			if res.IsSuccess() {
				sold.Add(1)
				return
			}
			if e, ok := errs.As(res.Err()); ok && e.Code == errs.CodeInsufficientStock {
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), sold.Load())
	assert.Equal(t, int32(7), refused.Load())
	assert.Equal(t, 0, store.p.Stock())
}

func TestProductService_DeleteProduct(t *testing.T) {
	products := new(MockProductRepository)
	svc := application.NewProductService(products, quietLogger())
	products.On("Delete", mock.Anything, "p1").Return(nil).Once()

	assert.True(t, svc.DeleteProduct(context.Background(), "p1").IsSuccess())
	products.AssertExpectations(t)
}
