package entity

import "github.com/oksasatya/go-clean-starter/internal/domain/errs"

// Role is an authorization role assigned to a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// ParseRole converts free text into a known role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", errs.Validation("roles", "unknown role "+s)
	}
	return r, nil
}

func validateRoles(roles []Role) error {
	if len(roles) == 0 {
		return errs.Validation("roles", "user must have at least one role")
	}
	seen := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			return errs.Validation("roles", "unknown role "+string(r))
		}
		if _, dup := seen[r]; dup {
			return errs.Validation("roles", "duplicate role "+string(r))
		}
		seen[r] = struct{}{}
	}
	return nil
}
