package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
	"github.com/oksasatya/go-clean-starter/pkg/result"
)

const (
	DefaultSessionTTL   = 24 * time.Hour
	CodeAuthUnavailable = "AUTH_UNAVAILABLE"
)

func errInvalidCredentials() error {
	return &errs.Error{Kind: errs.KindUnauthorized, Code: errs.CodeInvalidCredentials, Message: "invalid credentials"}
}

// AuthService handles password login and token sessions. Credentials is nil
// when the user store does not own passwords, which disables Login.
type AuthService struct {
	Users       repo.UserRepository
	Credentials repo.CredentialStore
	Hasher      service.PasswordHasher
	Tokens      service.TokenIssuer
	Sessions    service.SessionStore
	Logger      *logrus.Logger
	SessionTTL  time.Duration
}

type LoginResult struct {
	User   *entity.User
	Tokens service.TokenPair
}

type RefreshResult struct {
	UserID string
	Tokens service.TokenPair
}

func (s *AuthService) ttl() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) result.Result[*entity.User] {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return result.Fail[*entity.User](errs.Validation("email", "email is required"))
	}
	if password == "" {
		return result.Fail[*entity.User](errs.Validation("password", "password is required"))
	}
	if s.Credentials == nil {
		return result.Fail[*entity.User](errs.Domain(CodeAuthUnavailable, "password login is not available"))
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errs.IsNotFound(err) {
			return result.Fail[*entity.User](errInvalidCredentials())
		}
		return result.Fail[*entity.User](err)
	}
	hash, err := s.Credentials.PasswordHash(ctx, u.ID())
	if err != nil || !s.Hasher.Compare(hash, password) {
		return result.Fail[*entity.User](errInvalidCredentials())
	}
	if !u.IsActive() {
		return result.Fail[*entity.User](errs.Unauthorized("account is disabled"))
	}
	return result.Ok(u)
}

// IssueTokens generates access/refresh tokens and records the session.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (service.TokenPair, error) {
	log := loggerOrStd(s.Logger).WithField("user_id", u.ID())
	sid := uuid.NewString()
	pair, err := s.newPair(u.ID(), sid)
	if err != nil {
		log.WithError(err).Error("generate tokens failed")
		return service.TokenPair{}, err
	}
	if s.Sessions != nil {
		sess := service.Session{
			UserID:    u.ID(),
			SessionID: sid,
			Email:     u.Email(),
			Name:      u.FullName(),
			Avatar:    u.Avatar(),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.Sessions.Save(ctx, sess, s.ttl()); err != nil {
			log.WithError(err).Warn("save session failed")
		}
	}
	return pair, nil
}

func (s *AuthService) newPair(userID, sid string) (service.TokenPair, error) {
	access, aexp, err := s.Tokens.GenerateAccessToken(userID, sid)
	if err != nil {
		return service.TokenPair{}, err
	}
	refresh, rexp, err := s.Tokens.GenerateRefreshToken(userID, sid)
	if err != nil {
		return service.TokenPair{}, err
	}
	return service.TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) result.Result[LoginResult] {
	auth := s.Authenticate(ctx, email, password)
	if auth.IsFailure() {
		return result.Fail[LoginResult](auth.Err())
	}
	u := auth.Data()
	if logged, err := u.RecordLogin(time.Now()); err == nil {
		if err := s.Users.Update(ctx, logged); err != nil {
			loggerOrStd(s.Logger).WithError(err).WithField("user_id", u.ID()).Warn("record login failed")
		} else {
			u = logged
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return result.Fail[LoginResult](err)
	}
	return result.Ok(LoginResult{User: u, Tokens: pair})
}

// Refresh verifies a refresh token against the stored session and rotates
// both tokens under a new session id.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) result.Result[RefreshResult] {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return result.Fail[RefreshResult](errs.Unauthorized("missing refresh token"))
	}
	claims, err := s.Tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return result.Fail[RefreshResult](errInvalidCredentials())
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil || !u.IsActive() {
		return result.Fail[RefreshResult](errInvalidCredentials())
	}
	if s.Sessions != nil {
		sess, err := s.Sessions.Get(ctx, u.ID())
		if err != nil || sess.SessionID != claims.SessionID {
			return result.Fail[RefreshResult](errs.Unauthorized("session expired"))
		}
	}
	sid := uuid.NewString()
	pair, err := s.newPair(u.ID(), sid)
	if err != nil {
		return result.Fail[RefreshResult](err)
	}
	// tokens carrying sid only work once the store knows it
	if s.Sessions != nil {
		if err := s.Sessions.Rotate(ctx, u.ID(), sid); err != nil {
			loggerOrStd(s.Logger).WithError(err).WithField("user_id", u.ID()).Warn("rotate session failed")
			if errs.IsNotFound(err) {
				return result.Fail[RefreshResult](errs.Unauthorized("session expired"))
			}
			return result.Fail[RefreshResult](fmt.Errorf("rotate session: %w", err))
		}
	}
	return result.Ok(RefreshResult{UserID: u.ID(), Tokens: pair})
}

func (s *AuthService) Logout(ctx context.Context, userID string) result.Result[struct{}] {
	userID, err := validateID("userId", userID)
	if err != nil {
		return result.Fail[struct{}](err)
	}
	if s.Sessions != nil {
		if err := s.Sessions.Delete(ctx, userID); err != nil {
			return result.Fail[struct{}](err)
		}
	}
	return result.Ok(struct{}{})
}

// VerifySession reports whether sid is the user's current session. Without a
// session store every signed token is accepted.
func (s *AuthService) VerifySession(ctx context.Context, userID, sid string) bool {
	if s.Sessions == nil {
		return true
	}
	sess, err := s.Sessions.Get(ctx, userID)
	return err == nil && sess.SessionID == sid
}

func (s *AuthService) Profile(ctx context.Context, userID string) result.Result[*entity.User] {
	userID, err := validateID("userId", userID)
	if err != nil {
		return result.Fail[*entity.User](err)
	}
	u, err := s.Users.GetByID(ctx, userID)
	return result.From(u, err)
}
