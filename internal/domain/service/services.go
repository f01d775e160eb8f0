// Package service declares the side-effect ports the use cases depend on.
// Implementations live under internal/infrastructure.
package service

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
)

// EmailService sends transactional mail about users.
type EmailService interface {
	SendWelcome(ctx context.Context, u *entity.User) error
	SendProfileUpdated(ctx context.Context, u *entity.User, changes map[string]string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// UserIndex is a full text index over users.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Remove(ctx context.Context, id string) error
	// Search returns matching user ids ordered by relevance and the total hit count.
	Search(ctx context.Context, query string, offset, limit int) ([]string, int, error)
}

// ObjectStorage stores binary objects and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// TokenPair is an access/refresh token pair with expiries.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// TokenClaims is what a verified token tells about its bearer.
type TokenClaims struct {
	UserID    string
	SessionID string
}

// TokenIssuer creates and verifies signed tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID, sessionID string) (string, time.Time, error)
	GenerateRefreshToken(userID, sessionID string) (string, time.Time, error)
	ParseAccessToken(token string) (TokenClaims, error)
	ParseRefreshToken(token string) (TokenClaims, error)
}

// Session is the server side record of a login. There is at most one per user.
type Session struct {
	UserID    string
	SessionID string
	Email     string
	Name      string
	Avatar    string
	CreatedAt time.Time
}

// SessionStore persists sessions. Get returns an errs.NotFound error when the
// user has no session.
type SessionStore interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, userID string) (Session, error)
	Rotate(ctx context.Context, userID, sessionID string) error
	Delete(ctx context.Context, userID string) error
}
