package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-clean-starter/internal/application"
	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
)

type ProductHandler struct {
	Svc *application.ProductService
}

func NewProductHandler(svc *application.ProductService) *ProductHandler {
	return &ProductHandler{Svc: svc}
}

type createProductRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"required,max=1000"`
	Price       float64  `json:"price" binding:"gte=0"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
	CategoryID  string   `json:"categoryId" binding:"required"`
	Images      []string `json:"images" binding:"omitempty,max=10,dive,url"`
	Stock       int      `json:"stock" binding:"gte=0,lte=2147483647"`
	Tags        []string `json:"tags"`
}

type updateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Currency    *string  `json:"currency" binding:"omitempty,len=3"`
	CategoryID  *string  `json:"categoryId"`
	Images      []string `json:"images" binding:"omitempty,max=10,dive,url"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0,lte=2147483647"`
	IsActive    *bool    `json:"isActive"`
	Tags        []string `json:"tags"`
}

type listProductsQuery struct {
	Page       int      `form:"page"`
	Limit      int      `form:"limit"`
	SortBy     string   `form:"sortBy"`
	SortOrder  string   `form:"sortOrder" binding:"omitempty,sortorder"`
	Search     string   `form:"search"`
	CategoryID string   `form:"categoryId"`
	Tag        string   `form:"tag"`
	InStock    *bool    `form:"inStock"`
	IsActive   *bool    `form:"isActive"`
	MinPrice   *float64 `form:"minPrice"`
	MaxPrice   *float64 `form:"maxPrice"`
}

type stockRequest struct {
	Delta int `json:"delta" binding:"required,min=-1000000,max=1000000"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res := h.Svc.CreateProduct(c.Request.Context(), entity.NewProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		Stock:       req.Stock,
		Tags:        req.Tags,
	})
	reply(c, res, http.StatusCreated, "product created")
}

func (h *ProductHandler) List(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, err)
		return
	}
	res := h.Svc.ListProducts(c.Request.Context(), application.ListProductsInput{
		Page:       q.Page,
		Limit:      q.Limit,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
		Search:     q.Search,
		CategoryID: q.CategoryID,
		Tag:        q.Tag,
		InStock:    q.InStock,
		IsActive:   q.IsActive,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
	})
	reply(c, res, http.StatusOK, "products")
}

func (h *ProductHandler) Get(c *gin.Context) {
	reply(c, h.Svc.GetProduct(c.Request.Context(), c.Param("id")), http.StatusOK, "product")
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res := h.Svc.UpdateProduct(c.Request.Context(), c.Param("id"), entity.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
		Tags:        req.Tags,
	})
	reply(c, res, http.StatusOK, "product updated")
}

// AdjustStock applies a signed delta, e.g. {"delta": -2} after a sale.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	reply(c, h.Svc.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta), http.StatusOK, "stock adjusted")
}

func (h *ProductHandler) Delete(c *gin.Context) {
	reply(c, h.Svc.DeleteProduct(c.Request.Context(), c.Param("id")), http.StatusNoContent, "")
}
