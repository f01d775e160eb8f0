package helpers

import "golang.org/x/crypto/bcrypt"

// BcryptHasher implements service.PasswordHasher with bcrypt.
type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() BcryptHasher { return BcryptHasher{Cost: bcrypt.DefaultCost} }

// Hash hashes the plain text password using bcrypt
func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare compares a bcrypt hash with a plain password
func (h BcryptHasher) Compare(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
