package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/config"
	"github.com/oksasatya/go-clean-starter/internal/container"
	pginfra "github.com/oksasatya/go-clean-starter/internal/infrastructure/postgres"
	"github.com/oksasatya/go-clean-starter/internal/interface/middleware"
	"github.com/oksasatya/go-clean-starter/internal/router"
	"github.com/oksasatya/go-clean-starter/pkg/helpers"
	"github.com/oksasatya/go-clean-starter/pkg/httpclient"
	"github.com/oksasatya/go-clean-starter/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)

	switch cfg.UserRepositoryDriver {
	case config.DriverRemote:
		client := httpclient.New(httpclient.Config{
			BaseURL:       cfg.RemoteAPIURL,
			Timeout:       cfg.HTTPClientTimeout,
			RetryAttempts: cfg.HTTPClientRetries,
			RetryDelay:    cfg.HTTPClientRetryDelay,
		}, httpclient.WithLogger(logger))
		if cfg.RemoteAPIToken != "" {
			client.SetAuthToken(cfg.RemoteAPIToken)
		}
		container.SetAPIClient(client)
		logger.WithField("base_url", cfg.RemoteAPIURL).Info("using remote repositories")
	default:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		container.SetPGPool(pool)
	}

	// Redis backs the user cache, sessions and rate limits; without it those
	// features degrade instead of failing startup.
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("redis unavailable; cache, sessions and rate limits disabled")
			_ = rdb.Close()
		} else {
			container.SetRedis(rdb)
			defer func() { _ = rdb.Close() }()
		}
		cancel()
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs unavailable; avatar uploads disabled")
		} else {
			container.SetGCS(gcsClient)
			defer func() { _ = gcsClient.Close() }()
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = helpers.PingES(pingCtx, es)
			cancel()
		}
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; search uses the database")
		} else {
			container.SetES(es)
		}
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; emails are logged only")
		} else {
			container.SetRabbitPub(pub)
			defer pub.Close()
		}
	}

	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(middleware.AccessLog(logger))
	}
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	reg.Use(middleware.RateLimit(container.RedisScripter(), cfg.RateLimitRequests, cfg.RateLimitWindow, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	router.InitModules(reg)
	reg.RegisterAll()
	reg.LogRoutes(logger)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "driver": cfg.UserRepositoryDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	// let queued welcome emails finish before the publisher closes
	container.GetUserService().Wait()
	logger.Info("server exited properly")
}
