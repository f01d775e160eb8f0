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

const userColumns = `id::text, email, first_name, last_name, avatar, is_active, roles, last_login_at, created_at, updated_at`

var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		p     entity.UserProps
		roles []string
	)
	if err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Avatar, &p.IsActive,
		&roles, &p.LastLoginAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Roles = make([]entity.Role, 0, len(roles))
	for _, r := range roles {
		p.Roles = append(p.Roles, entity.Role(r))
	}
	return entity.NewUser(p)
}

func roleStrings(roles []entity.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User, passwordHash string) error {
	p := u.Props()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, avatar, is_active, roles, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.Email, passwordHash, p.FirstName, p.LastName, p.Avatar, p.IsActive,
		roleStrings(p.Roles), p.LastLoginAt, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return emailTaken(p.Email)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validUUID(id) {
		return nil, errs.NotFound("user", id)
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("user", id)
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("user", email)
	}
	return u, err
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`,
		entity.NormalizeEmail(email)).Scan(&exists)
	return exists, err
}

func (r *UserRepository) List(ctx context.Context, q repository.UserQuery) ([]*entity.User, int, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	f := q.Filter
	if f.Search != "" {
		ph := w.arg(likePattern(f.Search))
		w.add("(email ILIKE " + ph + " OR first_name ILIKE " + ph + " OR last_name ILIKE " + ph + ")")
	}
	if f.IsActive != nil {
		w.add("is_active = " + w.arg(*f.IsActive))
	}
	if f.Role != "" {
		w.add(w.arg(string(f.Role)) + " = ANY(roles)")
	}
	if f.IDs != nil {
		ids := make([]string, 0, len(f.IDs))
		for _, id := range f.IDs {
			if validUUID(id) {
				ids = append(ids, id)
			}
		}
		w.add("id::text = ANY(" + w.arg(ids) + ")")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	if total == 0 {
		return []*entity.User{}, 0, nil
	}

	args := append([]any{}, w.args...)
	sql := `SELECT ` + userColumns + ` FROM users` + w.String() +
		orderBy(userSortColumns, q.SortBy, q.SortOrder) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Page.Limit, q.Page.Offset())

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0, q.Page.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	p := u.Props()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, avatar = $4, is_active = $5,
		    roles = $6, last_login_at = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`, p.Email, p.FirstName, p.LastName, p.Avatar, p.IsActive,
		roleStrings(p.Roles), p.LastLoginAt, p.UpdatedAt, p.ID)
	if isUniqueViolation(err) {
		return emailTaken(p.Email)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("user", p.ID)
	}
	return nil
}

// Delete soft deletes: the row stays but disappears from every lookup.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return errs.NotFound("user", id)
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("user", id)
	}
	return nil
}

func (r *UserRepository) PasswordHash(ctx context.Context, userID string) (string, error) {
	if !validUUID(userID) {
		return "", errs.NotFound("user", userID)
	}
	var hash string
	err := r.pool.QueryRow(ctx,
		`SELECT password_hash FROM users WHERE id = $1 AND deleted_at IS NULL`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", errs.NotFound("user", userID)
	}
	return hash, err
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, userID, hash string) error {
	if !validUUID(userID) {
		return errs.NotFound("user", userID)
	}
	res, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`, hash, userID)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("user", userID)
	}
	return nil
}

var (
	_ repository.UserRepository  = (*UserRepository)(nil)
	_ repository.CredentialStore = (*UserRepository)(nil)
)
