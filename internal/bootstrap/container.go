package bootstrap

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/taskflow-io/hourtrack/internal/config"
	"github.com/taskflow-io/hourtrack/internal/infra/blob"
	"github.com/taskflow-io/hourtrack/internal/infra/cache"
	"github.com/taskflow-io/hourtrack/internal/infra/db"
	"github.com/taskflow-io/hourtrack/internal/infra/logger"
	"github.com/taskflow-io/hourtrack/internal/infra/queue"
	"github.com/taskflow-io/hourtrack/internal/modules/handler"
	"github.com/taskflow-io/hourtrack/internal/modules/repo"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"github.com/taskflow-io/hourtrack/internal/pkg/tokens"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildContainer wires every dependency. Redis, RabbitMQ and S3 are optional:
// when their section is not configured the matching feature is switched off.
func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis, nil when not configured
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		return cache.New(do.MustInvoke[*config.Config](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.StatsCache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb := do.MustInvoke[*redis.Client](i)
		if rdb == nil {
			return nil, nil
		}
		return cache.NewStatsCache(rdb, time.Duration(cfg.Redis.StatsCacheSec)*time.Second), nil
	})

	// RabbitMQ
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		return amqp.Dial(cfg.RabbitMQ.URL)
	})
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		if conn == nil {
			return nil, nil
		}
		return queue.NewPublisher(conn, cfg.RabbitMQ.Queue, do.MustInvoke[*zap.Logger](i))
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (service.BlobStore, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.S3.Bucket == "" {
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := blob.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		return store, nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.HourEntryRepo, error) {
		return repo.NewHourEntryRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.TaskRepo, error) {
		return repo.NewTaskRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AuthService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewAuthService(
			do.MustInvoke[repo.UserRepo](i),
			tokens.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.HourService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewHourService(
			do.MustInvoke[repo.HourEntryRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*zap.Logger](i),
			service.HourOptions{
				Location:      cfg.Location(),
				Cache:         do.MustInvoke[service.StatsCache](i),
				Events:        do.MustInvoke[service.EventPublisher](i),
				Blob:          do.MustInvoke[service.BlobStore](i),
				PresignExpire: time.Duration(cfg.S3.PresignExpireSec) * time.Second,
			},
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.StatsService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewStatsService(
			do.MustInvoke[repo.HourEntryRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*zap.Logger](i),
			service.StatsOptions{
				Location:      cfg.Location(),
				Cache:         do.MustInvoke[service.StatsCache](i),
				RecentEntries: cfg.Hours.RecentEntries,
			},
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TaskService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewTaskService(
			do.MustInvoke[repo.TaskRepo](i),
			do.MustInvoke[*zap.Logger](i),
			cfg.Location(),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.AuthHandler, error) {
		return handler.NewAuthHandler(do.MustInvoke[service.AuthService](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[service.StatsService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.HourHandler, error) {
		return handler.NewHourHandler(
			do.MustInvoke[service.HourService](i),
			do.MustInvoke[service.StatsService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.TaskHandler, error) {
		return handler.NewTaskHandler(do.MustInvoke[service.TaskService](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	return inj
}
