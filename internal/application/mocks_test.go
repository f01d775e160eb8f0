package application_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User, passwordHash string) error {
	return m.Called(ctx, u, passwordHash).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, q repo.UserQuery) ([]*entity.User, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) PasswordHash(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialStore) SetPasswordHash(ctx context.Context, userID, hash string) error {
	return m.Called(ctx, userID, hash).Error(0)
}

type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Compare(hash, plain string) bool {
	return m.Called(hash, plain).Bool(0)
}

// MockEmailService records calls and signals on sent once a call returns,
// since emails are sent from a background goroutine.
type MockEmailService struct {
	mock.Mock
	sent chan string
}

func newMockEmailService() *MockEmailService {
	return &MockEmailService{sent: make(chan string, 4)}
}

func (m *MockEmailService) SendWelcome(ctx context.Context, u *entity.User) error {
	defer func() { m.sent <- "welcome" }()
	return m.Called(ctx, u).Error(0)
}

func (m *MockEmailService) SendProfileUpdated(ctx context.Context, u *entity.User, changes map[string]string) error {
	defer func() { m.sent <- "profile_updated" }()
	return m.Called(ctx, u, changes).Error(0)
}

type MockUserIndex struct {
	mock.Mock
}

func (m *MockUserIndex) Index(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserIndex) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserIndex) Search(ctx context.Context, query string, offset, limit int) ([]string, int, error) {
	args := m.Called(ctx, query, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Int(1), args.Error(2)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, objectPath, contentType, r)
	return args.String(0), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateAccessToken(userID, sessionID string) (string, time.Time, error) {
	args := m.Called(userID, sessionID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenIssuer) GenerateRefreshToken(userID, sessionID string) (string, time.Time, error) {
	args := m.Called(userID, sessionID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenIssuer) ParseAccessToken(token string) (service.TokenClaims, error) {
	args := m.Called(token)
	return args.Get(0).(service.TokenClaims), args.Error(1)
}

func (m *MockTokenIssuer) ParseRefreshToken(token string) (service.TokenClaims, error) {
	args := m.Called(token)
	return args.Get(0).(service.TokenClaims), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, s service.Session, ttl time.Duration) error {
	return m.Called(ctx, s, ttl).Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, userID string) (service.Session, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *MockSessionStore) Rotate(ctx context.Context, userID, sessionID string) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, q repo.ProductQuery) ([]*entity.Product, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) Update(ctx context.Context, p *entity.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*entity.Product, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}
