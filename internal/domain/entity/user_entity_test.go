package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
)

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func validUserProps() UserProps {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return UserProps{
		ID:        "u-1",
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		IsActive:  true,
		Roles:     []Role{RoleUser},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateUser_Defaults(t *testing.T) {
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	freezeClock(t, at)

	u, err := CreateUser("  Ada@Example.COM ", " Ada ", "Lovelace")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID())
	assert.Equal(t, "ada@example.com", u.Email())
	assert.Equal(t, "Ada", u.FirstName())
	assert.True(t, u.IsActive())
	assert.Equal(t, []Role{RoleUser}, u.Roles())
	assert.Equal(t, at, u.CreatedAt())
	assert.Equal(t, at, u.UpdatedAt())
	assert.Nil(t, u.LastLoginAt())
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, "AL", u.Initials())
}

func TestNewUser_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(p *UserProps)
		field string
	}{
		{"missing id", func(p *UserProps) { p.ID = " " }, "id"},
		{"empty email", func(p *UserProps) { p.Email = "" }, "email"},
		{"email without domain", func(p *UserProps) { p.Email = "ada@" }, "email"},
		{"email with spaces", func(p *UserProps) { p.Email = "ada lovelace@example.com" }, "email"},
		{"empty first name", func(p *UserProps) { p.FirstName = "   " }, "firstName"},
		{"digits in last name", func(p *UserProps) { p.LastName = "L0velace" }, "lastName"},
		{"name too long", func(p *UserProps) { p.FirstName = string(make([]rune, 51)) }, "firstName"},
		{"relative avatar", func(p *UserProps) { p.Avatar = strPtr("/img/a.png") }, "avatar"},
		{"no roles", func(p *UserProps) { p.Roles = nil }, "roles"},
		{"unknown role", func(p *UserProps) { p.Roles = []Role{"root"} }, "roles"},
		{"duplicate role", func(p *UserProps) { p.Roles = []Role{RoleUser, RoleUser} }, "roles"},
		{"updated before created", func(p *UserProps) { p.UpdatedAt = p.CreatedAt.Add(-time.Second) }, "updatedAt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validUserProps()
			tc.mut(&p)
			u, err := NewUser(p)
			assert.Nil(t, u)
			require.Error(t, err)
			e, ok := errs.As(err)
			require.True(t, ok)
			assert.Equal(t, errs.KindValidation, e.Kind)
			assert.Equal(t, tc.field, e.Field)
		})
	}
}

func TestNewUser_AcceptsNamesWithPunctuation(t *testing.T) {
	p := validUserProps()
	p.FirstName = "Jean-Luc"
	p.LastName = "O'Brien de la Mar"
	_, err := NewUser(p)
	assert.NoError(t, err)

	p.FirstName = "Zoë"
	_, err = NewUser(p)
	assert.NoError(t, err)
}

func TestNewUser_CopiesInput(t *testing.T) {
	p := validUserProps()
	p.Roles = []Role{RoleUser, RoleAdmin}
	u, err := NewUser(p)
	require.NoError(t, err)

	p.Roles[1] = RoleModerator
	assert.True(t, u.IsAdmin())

	roles := u.Roles()
	roles[0] = RoleModerator
	assert.True(t, u.HasRole(RoleUser))
}

func TestUpdate_IsImmutable(t *testing.T) {
	u, err := NewUser(validUserProps())
	require.NoError(t, err)
	later := u.UpdatedAt().Add(time.Hour)
	freezeClock(t, later)

	updated, err := u.Update(UserUpdate{FirstName: strPtr("Augusta"), Avatar: strPtr("https://cdn.example.com/a.png")})
	require.NoError(t, err)

	assert.Equal(t, "Ada", u.FirstName(), "receiver must not change")
	assert.Equal(t, "", u.Avatar())
	assert.Equal(t, "Augusta", updated.FirstName())
	assert.Equal(t, "Lovelace", updated.LastName())
	assert.Equal(t, "https://cdn.example.com/a.png", updated.Avatar())
	assert.Equal(t, u.ID(), updated.ID())
	assert.Equal(t, u.CreatedAt(), updated.CreatedAt())
	assert.Equal(t, later, updated.UpdatedAt())
}

func TestUpdate_BumpsTimestampEvenWhenClockStalls(t *testing.T) {
	u, err := NewUser(validUserProps())
	require.NoError(t, err)
	freezeClock(t, u.UpdatedAt())

	updated, err := u.Update(UserUpdate{LastName: strPtr("Byron")})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt().After(u.UpdatedAt()))
}

func TestUpdate_RevalidatesAndClearsAvatar(t *testing.T) {
	p := validUserProps()
	p.Avatar = strPtr("https://cdn.example.com/a.png")
	u, err := NewUser(p)
	require.NoError(t, err)

	_, err = u.Update(UserUpdate{Email: strPtr("not-an-email")})
	assert.True(t, errs.IsValidation(err))

	cleared, err := u.Update(UserUpdate{Avatar: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "", cleared.Avatar())
}

func TestStateTransitions(t *testing.T) {
	u, err := NewUser(validUserProps())
	require.NoError(t, err)

	off, err := u.Deactivate()
	require.NoError(t, err)
	assert.False(t, off.IsActive())
	assert.True(t, u.IsActive())

	on, err := off.Activate()
	require.NoError(t, err)
	assert.True(t, on.IsActive())

	loginAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	logged, err := u.RecordLogin(loginAt)
	require.NoError(t, err)
	require.NotNil(t, logged.LastLoginAt())
	assert.Equal(t, loginAt, *logged.LastLoginAt())

	admin, err := u.AddRole(RoleAdmin)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	same, err := admin.AddRole(RoleAdmin)
	require.NoError(t, err)
	assert.Same(t, admin, same)

	demoted, err := admin.RemoveRole(RoleAdmin)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin())
	assert.True(t, admin.IsAdmin())

	_, err = u.RemoveRole(RoleUser)
	assert.True(t, errs.IsValidation(err), "removing the last role must fail")
}

func TestUserJSONRoundTrip(t *testing.T) {
	p := validUserProps()
	p.Avatar = strPtr("https://cdn.example.com/a.png")
	u, err := NewUser(p)
	require.NoError(t, err)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"firstName":"Ada"`)
	assert.NotContains(t, string(b), "lastLoginAt")

	var back User
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, u.Props(), back.Props())

	err = json.Unmarshal([]byte(`{"id":"x","email":"bad"}`), &back)
	assert.True(t, errs.IsValidation(err))
}
