package router

import (
	"context"
	"time"

	"github.com/oksasatya/go-clean-starter/config"
	"github.com/oksasatya/go-clean-starter/internal/application"
	"github.com/oksasatya/go-clean-starter/internal/container"
	repo "github.com/oksasatya/go-clean-starter/internal/domain/repository"
	"github.com/oksasatya/go-clean-starter/internal/domain/service"
	"github.com/oksasatya/go-clean-starter/internal/infrastructure/cache"
	"github.com/oksasatya/go-clean-starter/internal/infrastructure/elastic"
	"github.com/oksasatya/go-clean-starter/internal/infrastructure/mailqueue"
	pginfra "github.com/oksasatya/go-clean-starter/internal/infrastructure/postgres"
	"github.com/oksasatya/go-clean-starter/internal/infrastructure/restapi"
	"github.com/oksasatya/go-clean-starter/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-clean-starter/internal/interface/http"
	"github.com/oksasatya/go-clean-starter/internal/router/modules"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
)

type repositories struct {
	Users       repo.UserRepository
	Credentials repo.CredentialStore
	Products    repo.ProductRepository
}

// buildRepositories picks the storage driver. The remote driver has no
// password store, so Login is unavailable there.
func buildRepositories(cfg *config.Config) repositories {
	var r repositories
	switch cfg.UserRepositoryDriver {
	case config.DriverRemote:
		client := container.GetAPIClient()
		r.Users = restapi.NewUserRepository(client)
		r.Products = restapi.NewProductRepository(client)
	default:
		users := pginfra.NewUserRepository(container.GetPGPool())
		r.Users = users
		r.Credentials = users
		r.Products = pginfra.NewProductRepository(container.GetPGPool())
	}
	if rdb := container.GetRedis(); rdb != nil {
		r.Users = cache.NewUserRepository(r.Users, rdb, cfg.UserCacheTTL, container.GetLogger())
	}
	return r
}

func buildEmailService(cfg *config.Config) service.EmailService {
	if pub := container.GetRabbitPub(); cfg.MailSendEnabled && pub != nil {
		return mailqueue.NewEmailService(pub, cfg)
	}
	return mailqueue.LogOnly{Logger: container.GetLogger()}
}

func buildUserIndex(cfg *config.Config) service.UserIndex {
	es := container.GetES()
	if es == nil {
		return nil
	}
	idx := elastic.NewUserIndex(es, cfg.ESUsersIndex)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.EnsureIndex(ctx); err != nil {
		container.GetLogger().WithError(err).Warn("elasticsearch index setup failed; search falls back to the database")
		return nil
	}
	return idx
}

func buildUserService(cfg *config.Config, r repositories) *application.UserService {
	svc := application.NewUserService(r.Users, helpers.NewBcryptHasher(), container.GetLogger())
	svc.Email = buildEmailService(cfg)
	svc.WelcomeEmail = cfg.WelcomeEmailEnabled
	svc.Index = buildUserIndex(cfg)
	if gcs := storage.NewGCS(container.GetGCS(), cfg.GCSBucket); gcs != nil {
		svc.Storage = gcs
	}
	return svc
}

func buildAuthService(cfg *config.Config, r repositories) *application.AuthService {
	svc := &application.AuthService{
		Users:       r.Users,
		Credentials: r.Credentials,
		Hasher:      helpers.NewBcryptHasher(),
		Tokens:      container.GetJWT(),
		Logger:      container.GetLogger(),
		SessionTTL:  cfg.SessionTTL,
	}
	if rdb := container.GetRedis(); rdb != nil {
		svc.Sessions = cache.NewSessionStore(rdb, cfg.SessionTTL)
	}
	return svc
}

// InitModules builds the use cases from the container singletons, stores
// them back in the container and registers every module with the registry.
// Call it once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	repos := buildRepositories(cfg)

	userSvc := buildUserService(cfg, repos)
	authSvc := buildAuthService(cfg, repos)
	productSvc := application.NewProductService(repos.Products, container.GetLogger())
	container.SetUserService(userSvc)
	container.SetAuthService(authSvc)
	container.SetProductService(productSvc)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, cfg.CookieDomain, cfg.CookieSecure)))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, container.GetLogger())))
	r.Add(modules.NewProductModule(handlers.NewProductHandler(productSvc)))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
