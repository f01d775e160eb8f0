package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	"github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/pkg/httpclient"
)

const usersPath = "/users"

// UserRepository talks to GET/POST /users and GET/PUT/DELETE /users/{id}.
type UserRepository struct {
	client *httpclient.Client
}

func NewUserRepository(client *httpclient.Client) *UserRepository {
	return &UserRepository{client: client}
}

func userPath(id string) string { return usersPath + "/" + url.PathEscape(id) }

func (r *UserRepository) Create(ctx context.Context, u *entity.User, passwordHash string) error {
	body := userToDTO(u)
	body.PasswordHash = passwordHash
	res := httpclient.Post[json.RawMessage](ctx, r.client, usersPath, body)
	if res.IsFailure() {
		err := translate(res.Err(), "user", u.ID())
		if e, ok := errs.As(err); ok && e.Kind == errs.KindConflict && e.Code == errs.CodeConflict {
			e.Code = errs.CodeEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	res := httpclient.Get[userDTO](ctx, r.client, userPath(id))
	if res.IsFailure() {
		return nil, translate(res.Err(), "user", id)
	}
	return res.Data().toEntity()
}

func (r *UserRepository) findByEmail(ctx context.Context, email string) (page[userDTO], error) {
	q := url.Values{"email": {entity.NormalizeEmail(email)}, "limit": {"1"}}
	res := httpclient.Get[page[userDTO]](ctx, r.client, usersPath, httpclient.WithQuery(q))
	if res.IsFailure() {
		return page[userDTO]{}, translate(res.Err(), "user", email)
	}
	return res.Data(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	p, err := r.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(p.Items) == 0 {
		return nil, errs.NotFound("user", email)
	}
	return p.Items[0].toEntity()
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	p, err := r.findByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return len(p.Items) > 0, nil
}

func (r *UserRepository) List(ctx context.Context, q repository.UserQuery) ([]*entity.User, int, error) {
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
	if f.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*f.IsActive))
	}
	if f.Role != "" {
		v.Set("role", string(f.Role))
	}
	if len(f.IDs) > 0 {
		v.Set("ids", strings.Join(f.IDs, ","))
	}

	res := httpclient.Get[page[userDTO]](ctx, r.client, usersPath, httpclient.WithQuery(v))
	if res.IsFailure() {
		return nil, 0, translate(res.Err(), "user", "")
	}
	p := res.Data()
	users := make([]*entity.User, 0, len(p.Items))
	for i, d := range p.Items {
		u, err := d.toEntity()
		if err != nil {
			return nil, 0, fmt.Errorf("user %d in remote page: %w", i, err)
		}
		users = append(users, u)
	}
	return users, p.Total, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res := httpclient.Put[json.RawMessage](ctx, r.client, userPath(u.ID()), userToDTO(u))
	if res.IsFailure() {
		return translate(res.Err(), "user", u.ID())
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := httpclient.Delete[json.RawMessage](ctx, r.client, userPath(id))
	if res.IsFailure() {
		return translate(res.Err(), "user", id)
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
