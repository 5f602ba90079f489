package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port        string `mapstructure:"port"`
		Env         string `mapstructure:"env"`
		PublicURL   string `mapstructure:"public_url"`
		FrontendURL string `mapstructure:"frontend_url"`
	} `mapstructure:"app"`
	DB struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr       string        `mapstructure:"addr"`
		Password   string        `mapstructure:"password"`
		SessionTTL time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Storage struct {
		Provider string `mapstructure:"provider"`
	} `mapstructure:"storage"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	S3 struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
	} `mapstructure:"s3"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
	RateLimit struct {
		ViewsPerMinute int `mapstructure:"views_per_minute"`
		Burst          int `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`
	Cleanup struct {
		QueueSize int `mapstructure:"queue_size"`
	} `mapstructure:"cleanup"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	StorageCloudinary = "cloudinary"
	StorageS3         = "s3"
	StorageNone       = "none"
)

var envBindings = map[string]string{
	"app.port":                    "APP_PORT",
	"app.env":                     "APP_ENV",
	"app.public_url":              "APP_PUBLIC_URL",
	"app.frontend_url":            "APP_FRONTEND_URL",
	"db.driver":                   "DB_DRIVER",
	"db.dsn":                      "DB_DSN",
	"redis.addr":                  "REDIS_ADDR",
	"redis.password":              "REDIS_PASSWORD",
	"redis.session_ttl":           "REDIS_SESSION_TTL",
	"kafka.brokers":               "KAFKA_BROKERS",
	"kafka.group_id":              "KAFKA_GROUP_ID",
	"auth.jwt_secret":             "JWT_SECRET",
	"auth.token_lifespan":         "TOKEN_LIFESPAN",
	"storage.provider":            "STORAGE_PROVIDER",
	"cloudinary.cloud_name":       "CLOUDINARY_CLOUD_NAME",
	"cloudinary.api_key":          "CLOUDINARY_API_KEY",
	"cloudinary.api_secret":       "CLOUDINARY_API_SECRET",
	"s3.region":                   "S3_REGION",
	"s3.bucket":                   "S3_BUCKET",
	"s3.endpoint":                 "S3_ENDPOINT",
	"s3.access_key_id":            "S3_ACCESS_KEY_ID",
	"s3.secret_access_key":        "S3_SECRET_ACCESS_KEY",
	"tracing.otlp_endpoint":       "OTEL_EXPORTER_OTLP_ENDPOINT",
	"rate_limit.views_per_minute": "RATE_LIMIT_VIEWS_PER_MINUTE",
	"rate_limit.burst":            "RATE_LIMIT_BURST",
	"cleanup.queue_size":          "CLEANUP_QUEUE_SIZE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.public_url", "http://localhost:8080")
	v.SetDefault("app.frontend_url", "http://localhost:3000")
	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("redis.session_ttl", 24*time.Hour)
	v.SetDefault("kafka.group_id", "video-cleanup-group")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("storage.provider", StorageCloudinary)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("rate_limit.views_per_minute", 30)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("cleanup.queue_size", 256)
}

// LoadConfig reads path/.env and path/config.yaml, then lets environment variables override.
// Both files are optional.
func LoadConfig(path string) (cfg Config, err error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil {
		log.Println("warning: .env file not found, use environment and defaults.")
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config.yaml failed: %w", err)
		}
		err = nil
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("bind env %s failed: %w", env, err)
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config failed: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.DSN == "" {
			return errors.New("config: db.dsn is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown db.driver %q", c.DB.Driver)
	}
	switch c.Storage.Provider {
	case StorageCloudinary, StorageS3, StorageNone:
	default:
		return fmt.Errorf("config: unknown storage.provider %q", c.Storage.Provider)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret is required")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}
