package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"github.com/taskflow-io/hourtrack/internal/bootstrap"
	"github.com/taskflow-io/hourtrack/internal/config"
	"github.com/taskflow-io/hourtrack/internal/infra/cache"
	dbpkg "github.com/taskflow-io/hourtrack/internal/infra/db"
	"github.com/taskflow-io/hourtrack/internal/infra/queue"
	"github.com/taskflow-io/hourtrack/internal/modules/handler"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"github.com/taskflow-io/hourtrack/internal/router"
	"github.com/taskflow-io/hourtrack/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	db, err := do.Invoke[*gorm.DB](inj)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	rdb := do.MustInvoke[*redis.Client](inj)

	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()

		// plugins pick up the global tracer provider, so they go after SetupTracing
		if err := dbpkg.RegisterOpenTelemetryPlugin(db); err != nil {
			log.Sugar().Warnw("failed to register GORM OpenTelemetry plugin", "err", err)
		}
		if rdb != nil {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				log.Sugar().Warnw("failed to register Redis OpenTelemetry plugin", "err", err)
			}
		}
	}

	// unconfigured backends resolve to nil; configured ones must connect
	if _, err := do.Invoke[service.StatsCache](inj); err != nil {
		return fmt.Errorf("stats cache: %w", err)
	}
	publisher, err := do.Invoke[service.EventPublisher](inj)
	if err != nil {
		return fmt.Errorf("event publisher: %w", err)
	}
	if _, err := do.Invoke[service.BlobStore](inj); err != nil {
		return fmt.Errorf("export storage: %w", err)
	}
	if conn := do.MustInvoke[*amqp.Connection](inj); conn != nil {
		defer conn.Close()
	}
	if p, ok := publisher.(*queue.Publisher); ok {
		defer p.Close()
	}
	if rdb != nil {
		defer rdb.Close()
	}

	gin.SetMode(cfg.App.Env)

	engine := router.NewRouter(router.RouterDeps{
		Config:         cfg,
		Log:            log,
		AuthService:    do.MustInvoke[service.AuthService](inj),
		AuthHandler:    do.MustInvoke[*handler.AuthHandler](inj),
		ProjectHandler: do.MustInvoke[*handler.ProjectHandler](inj),
		HourHandler:    do.MustInvoke[*handler.HourHandler](inj),
		TaskHandler:    do.MustInvoke[*handler.TaskHandler](inj),
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	errCh := make(chan error, 1)
	go func() {
		log.Sugar().Infow("starting http server", "addr", addr, "timezone", cfg.Location().String())
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	log.Sugar().Info("server exited")
	return nil
}
