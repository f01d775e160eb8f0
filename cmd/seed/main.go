package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/config"
	"github.com/oksasatya/go-clean-starter/internal/application"
	"github.com/oksasatya/go-clean-starter/internal/domain/entity"
	"github.com/oksasatya/go-clean-starter/internal/domain/errs"
	pginfra "github.com/oksasatya/go-clean-starter/internal/infrastructure/postgres"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
)

// seed inserts a demo admin and a handful of products through the use cases,
// so the same validation applies as for API traffic. Re-running is safe.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN()})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	users := application.NewUserService(pginfra.NewUserRepository(pool), helpers.NewBcryptHasher(), logger)
	users.WelcomeEmail = false
	seedAdmin(ctx, users, logger)

	products := application.NewProductService(pginfra.NewProductRepository(pool), logger)
	if existing := products.ListProducts(ctx, application.ListProductsInput{Limit: 1}); existing.IsSuccess() && existing.Data().Total > 0 {
		logger.WithField("total", existing.Data().Total).Info("products already seeded")
		return
	}
	for _, in := range demoProducts {
		res := products.CreateProduct(ctx, in)
		if res.IsFailure() {
			logger.WithError(res.Err()).WithField("name", in.Name).Fatal("failed to seed product")
		}
		logger.WithFields(logrus.Fields{"id": res.Data().ID(), "name": in.Name}).Info("seeded product")
	}
}

func seedAdmin(ctx context.Context, users *application.UserService, logger *logrus.Logger) {
	const (
		email    = "admin@example.com"
		password = "Password123"
	)
	res := users.CreateUser(ctx, application.CreateUserInput{
		Email: email, Password: password, FirstName: "Demo", LastName: "Admin",
	})
	if e, ok := errs.As(res.Err()); ok && e.Code == errs.CodeEmailAlreadyExists {
		logger.WithField("email", email).Info("admin already seeded")
		return
	}
	if res.IsFailure() {
		logger.WithError(res.Err()).Fatal("failed to seed admin")
	}
	admin := users.UpdateUser(ctx, res.Data().ID(), application.UpdateUserInput{
		Roles: []string{string(entity.RoleAdmin), string(entity.RoleUser)},
	})
	if admin.IsFailure() {
		logger.WithError(admin.Err()).Fatal("failed to grant admin role")
	}
	logger.WithFields(logrus.Fields{"id": admin.Data().ID(), "email": email, "password": password}).Info("seeded admin")
}

var demoProducts = []entity.NewProductInput{
	{Name: "Desk Lamp", Description: "Warm white LED desk lamp", Price: 39.99, CategoryID: "lighting", Stock: 25, Tags: []string{"home", "office"}},
	{Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: 89.5, CategoryID: "peripherals", Stock: 10, Tags: []string{"office"}},
	{Name: "Notebook", Description: "A5 dotted notebook", Price: 7.25, Currency: "EUR", CategoryID: "stationery", Stock: 200},
}
