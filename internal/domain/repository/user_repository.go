package repository

import (
	"context"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/pkg/pagination"
)

// Sort orders accepted by list queries.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// UserFilter narrows a user listing. Zero values mean "no filter".
type UserFilter struct {
	Search   string
	IsActive *bool
	Role     entity.Role
	IDs      []string
}

// UserQuery is a validated list request.
type UserQuery struct {
	Filter    UserFilter
	Page      pagination.Params
	SortBy    string
	SortOrder string
}

// UserRepository defines the interface for user persistence.
// Lookups of unknown users return an errs.NotFound error.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User, passwordHash string) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, q UserQuery) ([]*entity.User, int, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
}

// CredentialStore exposes stored password hashes. Only stores that own the
// credentials (postgres) implement it.
type CredentialStore interface {
	PasswordHash(ctx context.Context, userID string) (string, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
}
