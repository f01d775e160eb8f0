package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-clean-starter/internal/domain/service"
)

// JWTManager handles generation and validation of JWT tokens
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

var _ service.TokenIssuer = (*JWTManager)(nil)

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateAccessToken(userID, sessionID string) (string, time.Time, error) {
	return sign(userID, sessionID, m.AccessTTL, m.AccessSecret)
}

func (m *JWTManager) GenerateRefreshToken(userID, sessionID string) (string, time.Time, error) {
	return sign(userID, sessionID, m.RefreshTTL, m.RefreshSecret)
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (service.TokenClaims, error) {
	return parseToken(tokenStr, m.AccessSecret)
}

func (m *JWTManager) ParseRefreshToken(tokenStr string) (service.TokenClaims, error) {
	return parseToken(tokenStr, m.RefreshSecret)
}

func sign(userID, sessionID string, ttl time.Duration, secret []byte) (string, time.Time, error) {
	issued := time.Now()
	exp := issued.Add(ttl)
	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	return s, exp, err
}

func parseToken(tokenStr string, secret []byte) (service.TokenClaims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return service.TokenClaims{}, err
	}
	if !tkn.Valid {
		return service.TokenClaims{}, errors.New("invalid token")
	}
	return service.TokenClaims{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}
