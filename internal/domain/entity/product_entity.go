package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
)

const (
	MaxProductPrice  = 999999.99
	maxProductImages = 10
	maxProductTags   = 20

	// MaxStock matches the INTEGER stock column.
	MaxStock = math.MaxInt32
	// MaxStockDelta bounds a single stock adjustment in either direction.
	MaxStockDelta = 1_000_000
)

// ProductProps is the raw state of a Product.
type ProductProps struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Currency    string
	CategoryID  string
	Images      []string
	Stock       int
	IsActive    bool
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is an immutable catalog item.
type Product struct {
	p ProductProps
}

// NewProductInput holds what a caller supplies when listing a new product.
type NewProductInput struct {
	Name        string
	Description string
	Price       float64
	Currency    string
	CategoryID  string
	Images      []string
	Stock       int
	Tags        []string
}

// ProductUpdate lists changeable fields; nil keeps the current value.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Currency    *string
	CategoryID  *string
	Images      []string
	Stock       *int
	IsActive    *bool
	Tags        []string
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Currency == nil &&
		u.CategoryID == nil && u.Images == nil && u.Stock == nil && u.IsActive == nil && u.Tags == nil
}

func NewProduct(p ProductProps) (*Product, error) {
	p = normalizeProductProps(p)
	if err := validateProductProps(p); err != nil {
		return nil, err
	}
	return &Product{p: cloneProductProps(p)}, nil
}

// CreateProduct is the factory for new catalog entries. Currency defaults to USD.
func CreateProduct(in NewProductInput) (*Product, error) {
	t := now()
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = "USD"
	}
	return NewProduct(ProductProps{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Currency:    in.Currency,
		CategoryID:  in.CategoryID,
		Images:      in.Images,
		Stock:       in.Stock,
		IsActive:    true,
		Tags:        in.Tags,
		CreatedAt:   t,
		UpdatedAt:   t,
	})
}

func normalizeProductProps(p ProductProps) ProductProps {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	p.CategoryID = strings.TrimSpace(p.CategoryID)
	if p.Tags != nil {
		tags := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			tags = append(tags, strings.ToLower(strings.TrimSpace(t)))
		}
		p.Tags = tags
	}
	return p
}

func validateProductProps(p ProductProps) error {
	if p.ID == "" {
		return errs.Validation("id", "id is required")
	}
	if err := lengthBetween("name", p.Name, 2, 100); err != nil {
		return err
	}
	if err := lengthBetween("description", p.Description, 10, 1000); err != nil {
		return err
	}
	if err := ValidatePrice(p.Price); err != nil {
		return err
	}
	if !currencyPattern.MatchString(p.Currency) {
		return errs.Validation("currency", "currency must be a 3 letter ISO code")
	}
	if p.CategoryID == "" {
		return errs.Validation("categoryId", "categoryId is required")
	}
	if p.Stock < 0 {
		return errs.Validation("stock", "stock must be a non-negative integer")
	}
	if p.Stock > MaxStock {
		return errs.Validation("stock", fmt.Sprintf("stock must be at most %d", MaxStock))
	}
	if len(p.Images) > maxProductImages {
		return errs.Validation("images", fmt.Sprintf("at most %d images allowed", maxProductImages))
	}
	for _, img := range p.Images {
		if err := validateHTTPURL("images", img); err != nil {
			return err
		}
	}
	if len(p.Tags) > maxProductTags {
		return errs.Validation("tags", fmt.Sprintf("at most %d tags allowed", maxProductTags))
	}
	seen := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		if err := lengthBetween("tags", t, 1, 30); err != nil {
			return err
		}
		if _, dup := seen[t]; dup {
			return errs.Validation("tags", "duplicate tag "+t)
		}
		seen[t] = struct{}{}
	}
	if p.CreatedAt.IsZero() {
		return errs.Validation("createdAt", "createdAt is required")
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		return errs.Validation("updatedAt", "updatedAt must not be before createdAt")
	}
	return nil
}

// ValidatePrice enforces the [0, 999999.99] range with cent precision.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return errs.Validation("price", "price must be a number")
	}
	if price < 0 || price > MaxProductPrice {
		return errs.Validation("price", "price must be between 0 and 999999.99")
	}
	cents := price * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return errs.Validation("price", "price must have at most two decimals")
	}
	return nil
}

func cloneProductProps(p ProductProps) ProductProps {
	out := p
	out.Images = append([]string(nil), p.Images...)
	out.Tags = append([]string(nil), p.Tags...)
	return out
}

func (p *Product) ID() string           { return p.p.ID }
func (p *Product) Name() string         { return p.p.Name }
func (p *Product) Description() string  { return p.p.Description }
func (p *Product) Price() float64       { return p.p.Price }
func (p *Product) Currency() string     { return p.p.Currency }
func (p *Product) CategoryID() string   { return p.p.CategoryID }
func (p *Product) Images() []string     { return append([]string(nil), p.p.Images...) }
func (p *Product) Stock() int           { return p.p.Stock }
func (p *Product) InStock() bool        { return p.p.Stock > 0 }
func (p *Product) IsActive() bool       { return p.p.IsActive }
func (p *Product) Tags() []string       { return append([]string(nil), p.p.Tags...) }
func (p *Product) CreatedAt() time.Time { return p.p.CreatedAt }
func (p *Product) UpdatedAt() time.Time { return p.p.UpdatedAt }
func (p *Product) Props() ProductProps  { return cloneProductProps(p.p) }

// FormattedPrice renders the price as "12.50 USD".
func (p *Product) FormattedPrice() string {
	return fmt.Sprintf("%.2f %s", p.p.Price, p.p.Currency)
}

func (p *Product) with(fn func(pp *ProductProps)) (*Product, error) {
	pp := cloneProductProps(p.p)
	fn(&pp)
	pp.ID = p.p.ID
	pp.CreatedAt = p.p.CreatedAt
	pp.UpdatedAt = touch(p.p.UpdatedAt)
	return NewProduct(pp)
}

func (p *Product) Update(in ProductUpdate) (*Product, error) {
	return p.with(func(pp *ProductProps) {
		if in.Name != nil {
			pp.Name = *in.Name
		}
		if in.Description != nil {
			pp.Description = *in.Description
		}
		if in.Price != nil {
			pp.Price = *in.Price
		}
		if in.Currency != nil {
			pp.Currency = *in.Currency
		}
		if in.CategoryID != nil {
			pp.CategoryID = *in.CategoryID
		}
		if in.Images != nil {
			pp.Images = append([]string(nil), in.Images...)
		}
		if in.Stock != nil {
			pp.Stock = *in.Stock
		}
		if in.IsActive != nil {
			pp.IsActive = *in.IsActive
		}
		if in.Tags != nil {
			pp.Tags = append([]string(nil), in.Tags...)
		}
	})
}

// AdjustStock adds delta (possibly negative) to the stock level.
func (p *Product) AdjustStock(delta int) (*Product, error) {
	if err := ValidateStockDelta(delta); err != nil {
		return nil, err
	}
	if p.p.Stock+delta < 0 {
		return nil, errs.Domain(errs.CodeInsufficientStock, "insufficient stock").
			With("available", p.p.Stock).With("requested", -delta)
	}
	return p.with(func(pp *ProductProps) { pp.Stock += delta })
}

// ValidateStockDelta rejects zero and out of range adjustments.
func ValidateStockDelta(delta int) error {
	if delta == 0 {
		return errs.Validation("delta", "delta must not be zero")
	}
	if delta < -MaxStockDelta || delta > MaxStockDelta {
		return errs.Validation("delta", fmt.Sprintf("delta must be between -%d and %d", MaxStockDelta, MaxStockDelta))
	}
	return nil
}

func (p *Product) Activate() (*Product, error) {
	return p.with(func(pp *ProductProps) { pp.IsActive = true })
}

func (p *Product) Deactivate() (*Product, error) {
	return p.with(func(pp *ProductProps) { pp.IsActive = false })
}

type productJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	CategoryID  string    `json:"categoryId"`
	Images      []string  `json:"images"`
	Stock       int       `json:"stock"`
	InStock     bool      `json:"inStock"`
	IsActive    bool      `json:"isActive"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) MarshalJSON() ([]byte, error) {
	pp := cloneProductProps(p.p)
	if pp.Images == nil {
		pp.Images = []string{}
	}
	if pp.Tags == nil {
		pp.Tags = []string{}
	}
	return json.Marshal(productJSON{
		ID: pp.ID, Name: pp.Name, Description: pp.Description, Price: pp.Price,
		Currency: pp.Currency, CategoryID: pp.CategoryID, Images: pp.Images,
		Stock: pp.Stock, InStock: pp.Stock > 0, IsActive: pp.IsActive, Tags: pp.Tags,
		CreatedAt: pp.CreatedAt, UpdatedAt: pp.UpdatedAt,
	})
}

func (p *Product) UnmarshalJSON(b []byte) error {
	var j productJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	parsed, err := NewProduct(ProductProps{
		ID: j.ID, Name: j.Name, Description: j.Description, Price: j.Price,
		Currency: j.Currency, CategoryID: j.CategoryID, Images: j.Images,
		Stock: j.Stock, IsActive: j.IsActive, Tags: j.Tags,
		CreatedAt: j.CreatedAt, UpdatedAt: j.UpdatedAt,
	})
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}
