package config

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
}

type AuthCfg struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	// postgres | sqlite
	Driver      string
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type RedisCfg struct {
	Addr          string
	Password      string
	DB            int
	PoolSize      int
	StatsCacheSec int
}

type MQCfg struct {
	URL      string
	Queue    string
	Prefetch int
}

type S3Cfg struct {
	Endpoint         string
	Region           string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UsePathStyle     bool
	PresignExpireSec int
	SSE              string
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	SampleRatio  float64
}

type HoursCfg struct {
	// IANA zone used to resolve calendar days, e.g. "Europe/Paris"
	Timezone      string
	RecentEntries int
}

type Config struct {
	App       AppCfg
	Auth      AuthCfg
	Log       LogCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	S3        S3Cfg
	Telemetry TelemetryCfg
	Hours     HoursCfg
}

// Location resolves Hours.Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Hours.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Hours.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load() (*Config, error) {
	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("APP") // e.g. APP_DATABASE_DSN -> database.dsn

	setDefaults(base)

	if err := base.ReadInConfig(); err == nil {
		// expand ${ENV} in the file before parsing it
		raw, err := os.ReadFile(base.ConfigFileUsed())
		if err != nil {
			return nil, err
		}
		return parse(os.ExpandEnv(string(raw)))
	}

	// no file, env + defaults only
	cfg := new(Config)
	if err := base.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func parse(expanded string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, err
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	setDefaults(v)

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return finish(cfg)
}

const devJWTSecret = "hourtrack-dev-secret"

// finish fills the values an unset ${ENV} reference leaves empty.
func finish(cfg *Config) (*Config, error) {
	if cfg.App.Env == "" {
		cfg.App.Env = "debug"
	}
	if cfg.Auth.JWTSecret == "" {
		if cfg.App.Env == "release" {
			return nil, errors.New("auth.jwtSecret is required in release mode")
		}
		cfg.Auth.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hourtrack")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("auth.jwtSecret", devJWTSecret)
	v.SetDefault("auth.tokenTTL", "72h")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.maxOpen", 20)
	v.SetDefault("database.maxIdle", 5)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.statsCacheSec", 300)
	v.SetDefault("rabbitmq.queue", "hour_entry_events")
	v.SetDefault("rabbitmq.prefetch", 10)
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("s3.presignExpireSec", 900)
	v.SetDefault("telemetry.sampleRatio", 1.0)
	v.SetDefault("hours.timezone", "UTC")
	v.SetDefault("hours.recentEntries", 10)
}
