package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/internal/domain/repository"
)

const productColumns = `id::text, name, description, price, currency, category_id, images, stock, is_active, tags, created_at, updated_at`

var productSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
}

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.ProductProps
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.CategoryID,
		&p.Images, &p.Stock, &p.IsActive, &p.Tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return entity.NewProduct(p)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *ProductRepository) Create(ctx context.Context, prod *entity.Product) error {
	p := prod.Props()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, description, price, currency, category_id, images, stock, is_active, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.Name, p.Description, p.Price, p.Currency, p.CategoryID, nonNil(p.Images),
		p.Stock, p.IsActive, nonNil(p.Tags), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validUUID(id) {
		return nil, errs.NotFound("product", id)
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("product", id)
	}
	return p, err
}

func (r *ProductRepository) List(ctx context.Context, q repository.ProductQuery) ([]*entity.Product, int, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	f := q.Filter
	if f.Search != "" {
		ph := w.arg(likePattern(f.Search))
		w.add("(name ILIKE " + ph + " OR description ILIKE " + ph + ")")
	}
	if f.CategoryID != "" {
		w.add("category_id = " + w.arg(f.CategoryID))
	}
	if f.Tag != "" {
		w.add(w.arg(f.Tag) + " = ANY(tags)")
	}
	if f.InStock != nil {
		if *f.InStock {
			w.add("stock > 0")
		} else {
			w.add("stock = 0")
		}
	}
	if f.IsActive != nil {
		w.add("is_active = " + w.arg(*f.IsActive))
	}
	if f.MinPrice != nil {
		w.add("price >= " + w.arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		w.add("price <= " + w.arg(*f.MaxPrice))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	if total == 0 {
		return []*entity.Product{}, 0, nil
	}

	args := append([]any{}, w.args...)
	sql := `SELECT ` + productColumns + ` FROM products` + w.String() +
		orderBy(productSortColumns, q.SortBy, q.SortOrder) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Page.Limit, q.Page.Offset())

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.Product, 0, q.Page.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, prod *entity.Product) error {
	p := prod.Props()
	res, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, currency = $4, category_id = $5,
		    images = $6, stock = $7, is_active = $8, tags = $9, updated_at = $10
		WHERE id = $11 AND deleted_at IS NULL
	`, p.Name, p.Description, p.Price, p.Currency, p.CategoryID, nonNil(p.Images),
		p.Stock, p.IsActive, nonNil(p.Tags), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("product", p.ID)
	}
	return nil
}

// AdjustStock applies delta in a single UPDATE so concurrent adjustments never
// read and overwrite each other's result.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*entity.Product, error) {
	if !validUUID(id) {
		return nil, errs.NotFound("product", id)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
		  AND stock + $1::bigint BETWEEN 0 AND $3
		RETURNING `+productColumns, delta, id, entity.MaxStock)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	var stock int
	err = r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if stock+delta < 0 {
		return nil, errs.Domain(errs.CodeInsufficientStock, "insufficient stock").
			With("available", stock).With("requested", -delta)
	}
	return nil, errs.Validation("delta", fmt.Sprintf("stock must be at most %d", entity.MaxStock))
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return errs.NotFound("product", id)
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE products SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("product", id)
	}
	return nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
