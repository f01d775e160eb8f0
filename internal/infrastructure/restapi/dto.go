package restapi

import (
	"time"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
)

type userDTO struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Avatar       *string    `json:"avatar,omitempty"`
	IsActive     bool       `json:"isActive"`
	Roles        []string   `json:"roles"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	PasswordHash string     `json:"passwordHash,omitempty"`
}

func userToDTO(u *entity.User) userDTO {
	p := u.Props()
	roles := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, string(r))
	}
	return userDTO{
		ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName,
		Avatar: p.Avatar, IsActive: p.IsActive, Roles: roles, LastLoginAt: p.LastLoginAt,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

// toEntity validates the remote payload through the entity factory.
func (d userDTO) toEntity() (*entity.User, error) {
	roles := make([]entity.Role, 0, len(d.Roles))
	for _, r := range d.Roles {
		roles = append(roles, entity.Role(r))
	}
	if len(roles) == 0 {
		roles = []entity.Role{entity.RoleUser}
	}
	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = d.CreatedAt
	}
	return entity.NewUser(entity.UserProps{
		ID: d.ID, Email: d.Email, FirstName: d.FirstName, LastName: d.LastName,
		Avatar: d.Avatar, IsActive: d.IsActive, Roles: roles, LastLoginAt: d.LastLoginAt,
		CreatedAt: d.CreatedAt, UpdatedAt: updated,
	})
}

type productDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	CategoryID  string    `json:"categoryId"`
	Images      []string  `json:"images"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func productToDTO(p *entity.Product) productDTO {
	pp := p.Props()
	return productDTO{
		ID: pp.ID, Name: pp.Name, Description: pp.Description, Price: pp.Price,
		Currency: pp.Currency, CategoryID: pp.CategoryID, Images: nonNil(pp.Images),
		Stock: pp.Stock, IsActive: pp.IsActive, Tags: nonNil(pp.Tags),
		CreatedAt: pp.CreatedAt, UpdatedAt: pp.UpdatedAt,
	}
}

func (d productDTO) toEntity() (*entity.Product, error) {
	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = d.CreatedAt
	}
	return entity.NewProduct(entity.ProductProps{
		ID: d.ID, Name: d.Name, Description: d.Description, Price: d.Price,
		Currency: d.Currency, CategoryID: d.CategoryID, Images: d.Images,
		Stock: d.Stock, IsActive: d.IsActive, Tags: d.Tags,
		CreatedAt: d.CreatedAt, UpdatedAt: updated,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// page mirrors pagination.Page on the wire; only the fields the
// repositories need are decoded.
type page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
