package entity

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern     = regexp.MustCompile(`^[\p{L}\s'-]+$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

const (
	maxEmailLength = 254
	maxNameLength  = 50
)

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// touch returns a timestamp strictly after prev so every update is observable.
func touch(prev time.Time) time.Time {
	t := now()
	if !t.After(prev) {
		t = prev.Add(time.Millisecond)
	}
	return t
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the normalized address against the email rules.
func ValidateEmail(email string) error {
	if email == "" {
		return errs.Validation("email", "email is required")
	}
	if len(email) > maxEmailLength {
		return errs.Validation("email", "email is too long")
	}
	if !emailPattern.MatchString(email) {
		return errs.Validation("email", "invalid email format")
	}
	return nil
}

// ValidatePersonName checks a first or last name.
func ValidatePersonName(field, name string) error {
	if name == "" {
		return errs.Validation(field, field+" is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return errs.Validation(field, field+" must be at most 50 characters")
	}
	if !namePattern.MatchString(name) {
		return errs.Validation(field, field+" may only contain letters, spaces, hyphens and apostrophes")
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errs.Validation(field, field+" must be an absolute http(s) URL")
	}
	return nil
}

func lengthBetween(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return errs.Validation(field, fmt.Sprintf("%s length must be between %d and %d", field, min, max))
	}
	return nil
}
