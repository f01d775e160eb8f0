package entity

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
)

// UserProps is the raw state of a User. Repositories build users from it and
// read it back through User.Props.
type UserProps struct {
	ID          string
	Email       string
	FirstName   string
	LastName    string
	Avatar      *string
	IsActive    bool
	Roles       []Role
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User is the aggregate root for the user domain. It is immutable: every
// mutation returns a new *User and leaves the receiver untouched.
type User struct {
	p UserProps
}

// UserUpdate lists the fields a caller may change. Nil means "keep".
type UserUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Avatar    *string // empty string clears the avatar
	IsActive  *bool
	Roles     []Role
}

// Empty reports whether the update carries no change at all.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.FirstName == nil && u.LastName == nil &&
		u.Avatar == nil && u.IsActive == nil && u.Roles == nil
}

// NewUser validates props and returns a User holding a private copy of them.
func NewUser(p UserProps) (*User, error) {
	p = normalizeUserProps(p)
	if err := validateUserProps(p); err != nil {
		return nil, err
	}
	return &User{p: cloneUserProps(p)}, nil
}

// CreateUser is the factory for brand-new users.
func CreateUser(email, firstName, lastName string) (*User, error) {
	t := now()
	return NewUser(UserProps{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		Roles:     []Role{RoleUser},
		CreatedAt: t,
		UpdatedAt: t,
	})
}

func normalizeUserProps(p UserProps) UserProps {
	p.ID = strings.TrimSpace(p.ID)
	p.Email = NormalizeEmail(p.Email)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.Avatar != nil {
		a := strings.TrimSpace(*p.Avatar)
		if a == "" {
			p.Avatar = nil
		} else {
			p.Avatar = &a
		}
	}
	return p
}

func validateUserProps(p UserProps) error {
	if p.ID == "" {
		return errs.Validation("id", "id is required")
	}
	if err := ValidateEmail(p.Email); err != nil {
		return err
	}
	if err := ValidatePersonName("firstName", p.FirstName); err != nil {
		return err
	}
	if err := ValidatePersonName("lastName", p.LastName); err != nil {
		return err
	}
	if p.Avatar != nil {
		if err := validateHTTPURL("avatar", *p.Avatar); err != nil {
			return err
		}
	}
	if err := validateRoles(p.Roles); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		return errs.Validation("createdAt", "createdAt is required")
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		return errs.Validation("updatedAt", "updatedAt must not be before createdAt")
	}
	return nil
}

func cloneUserProps(p UserProps) UserProps {
	out := p
	out.Roles = append([]Role(nil), p.Roles...)
	if p.Avatar != nil {
		a := *p.Avatar
		out.Avatar = &a
	}
	if p.LastLoginAt != nil {
		t := *p.LastLoginAt
		out.LastLoginAt = &t
	}
	return out
}

func (u *User) ID() string              { return u.p.ID }
func (u *User) Email() string           { return u.p.Email }
func (u *User) FirstName() string       { return u.p.FirstName }
func (u *User) LastName() string        { return u.p.LastName }
func (u *User) IsActive() bool          { return u.p.IsActive }
func (u *User) CreatedAt() time.Time    { return u.p.CreatedAt }
func (u *User) UpdatedAt() time.Time    { return u.p.UpdatedAt }
func (u *User) Roles() []Role           { return append([]Role(nil), u.p.Roles...) }
func (u *User) Props() UserProps        { return cloneUserProps(u.p) }
func (u *User) FullName() string        { return u.p.FirstName + " " + u.p.LastName }
func (u *User) IsAdmin() bool           { return u.HasRole(RoleAdmin) }
func (u *User) LastLoginAt() *time.Time { return cloneUserProps(u.p).LastLoginAt }

func (u *User) Avatar() string {
	if u.p.Avatar == nil {
		return ""
	}
	return *u.p.Avatar
}

func (u *User) Initials() string {
	first, _ := utf8.DecodeRuneInString(u.p.FirstName)
	last, _ := utf8.DecodeRuneInString(u.p.LastName)
	return string([]rune{unicode.ToUpper(first), unicode.ToUpper(last)})
}

func (u *User) HasRole(r Role) bool {
	for _, have := range u.p.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// with applies fn to a copy of the props, re-validates and bumps updatedAt.
func (u *User) with(fn func(p *UserProps)) (*User, error) {
	p := cloneUserProps(u.p)
	fn(&p)
	p.ID = u.p.ID
	p.CreatedAt = u.p.CreatedAt
	p.UpdatedAt = touch(u.p.UpdatedAt)
	return NewUser(p)
}

// Update merges the non-nil fields of in into a new User.
func (u *User) Update(in UserUpdate) (*User, error) {
	return u.with(func(p *UserProps) {
		if in.Email != nil {
			p.Email = *in.Email
		}
		if in.FirstName != nil {
			p.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			p.LastName = *in.LastName
		}
		if in.Avatar != nil {
			a := *in.Avatar
			p.Avatar = &a
		}
		if in.IsActive != nil {
			p.IsActive = *in.IsActive
		}
		if in.Roles != nil {
			p.Roles = append([]Role(nil), in.Roles...)
		}
	})
}

func (u *User) Activate() (*User, error) {
	return u.with(func(p *UserProps) { p.IsActive = true })
}

func (u *User) Deactivate() (*User, error) {
	return u.with(func(p *UserProps) { p.IsActive = false })
}

func (u *User) RecordLogin(at time.Time) (*User, error) {
	return u.with(func(p *UserProps) {
		t := at.UTC()
		p.LastLoginAt = &t
	})
}

func (u *User) AddRole(r Role) (*User, error) {
	if u.HasRole(r) {
		return u, nil
	}
	return u.with(func(p *UserProps) { p.Roles = append(p.Roles, r) })
}

func (u *User) RemoveRole(r Role) (*User, error) {
	if !u.HasRole(r) {
		return u, nil
	}
	return u.with(func(p *UserProps) {
		kept := p.Roles[:0]
		for _, have := range p.Roles {
			if have != r {
				kept = append(kept, have)
			}
		}
		p.Roles = kept
	})
}

type userJSON struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Avatar      *string    `json:"avatar,omitempty"`
	IsActive    bool       `json:"isActive"`
	Roles       []Role     `json:"roles"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (u *User) MarshalJSON() ([]byte, error) {
	p := u.p
	return json.Marshal(userJSON{
		ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName,
		Avatar: p.Avatar, IsActive: p.IsActive, Roles: p.Roles, LastLoginAt: p.LastLoginAt,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	})
}

// UnmarshalJSON decodes and validates, so a User read from a cache or a
// remote API obeys the same invariants as one built in-process.
func (u *User) UnmarshalJSON(b []byte) error {
	var j userJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	parsed, err := NewUser(UserProps{
		ID: j.ID, Email: j.Email, FirstName: j.FirstName, LastName: j.LastName,
		Avatar: j.Avatar, IsActive: j.IsActive, Roles: j.Roles, LastLoginAt: j.LastLoginAt,
		CreatedAt: j.CreatedAt, UpdatedAt: j.UpdatedAt,
	})
	if err != nil {
		return err
	}
	*u = *parsed
	return nil
}
