package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/config"
	"github.com/oksasatya/go-clean-starter/internal/application"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
	"github.com/oksasatya/go-clean-starter/pkg/httpclient"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons. Optional backends
// (Redis, GCS, Elasticsearch, RabbitMQ) stay nil when unavailable.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	apiClient   *httpclient.Client

	jwtManager *helpers.JWTManager

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client

	userService    *application.UserService
	authService    *application.AuthService
	productService *application.ProductService
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }

func SetAPIClient(c *httpclient.Client) { apiClient = c }
func GetAPIClient() *httpclient.Client  { return apiClient }

// GetJWT falls back to a manager built from the loaded config.
func GetJWT() *helpers.JWTManager {
	if jwtManager == nil && cfg != nil {
		jwtManager = helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	}
	return jwtManager
}

// RedisScripter returns the Redis client as an interface, or an untyped nil
// when Redis is not configured so callers can test it against nil.
func RedisScripter() redis.Scripter {
	if redisClient == nil {
		return nil
	}
	return redisClient
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

func SetUserService(s *application.UserService)       { userService = s }
func GetUserService() *application.UserService        { return userService }
func SetAuthService(s *application.AuthService)       { authService = s }
func GetAuthService() *application.AuthService        { return authService }
func SetProductService(s *application.ProductService) { productService = s }
func GetProductService() *application.ProductService  { return productService }
