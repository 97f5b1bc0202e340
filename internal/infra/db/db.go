package db

import (
	"fmt"
	"time"

	"github.com/taskflow-io/hourtrack/internal/config"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

func New(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	d, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		// single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.Database.MaxOpen > 0 {
			sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
		}
		if cfg.Database.MaxIdle > 0 {
			sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return d, nil
}

// Migrate creates or updates the tables and indexes of every model.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.HourEntry{},
		&model.Task{},
	)
}

// RegisterOpenTelemetryPlugin traces every gorm statement; call it after the tracer provider is set.
func RegisterOpenTelemetryPlugin(d *gorm.DB) error {
	return d.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}
