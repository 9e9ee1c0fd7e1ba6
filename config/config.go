package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings of the server
type Config struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	Env      string `env:"APP_ENV"   envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AWSRegion               string `env:"AWS_REGION"`
	S3Bucket                string `env:"S3_BUCKET_NAME"`
	ProfilesTable           string `env:"PROFILES_TABLE"            envDefault:"Profiles"`
	PhotoRequestsTable      string `env:"PHOTO_REQUESTS_TABLE"      envDefault:"PhotoAccessRequests"`
	ConnectionRequestsTable string `env:"CONNECTION_REQUESTS_TABLE" envDefault:"ConnectionRequests"`
	StatusIndex             string `env:"PROFILES_STATUS_INDEX"     envDefault:"status-id-index"`
	StoreDriver             string `env:"STORE_DRIVER"              envDefault:"dynamodb"`

	JWTSecret string `env:"JWT_SECRET"`

	URLCacheSize int64         `env:"URL_CACHE_SIZE" envDefault:"10000"`
	URLCacheTTL  time.Duration `env:"URL_CACHE_TTL"  envDefault:"55m"`
	URLValidity  time.Duration `env:"URL_VALIDITY"   envDefault:"60m"`

	RedisURL       string        `env:"REDIS_URL"`
	FeedRateLimit  int64         `env:"FEED_RATE_LIMIT"  envDefault:"60"`
	FeedRateWindow time.Duration `env:"FEED_RATE_WINDOW" envDefault:"1m"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"10s"`
}

// Load reads an optional .env file and parses the environment into a Config
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.URLCacheTTL <= 0 || c.URLValidity <= 0 {
		return errors.New("URL_CACHE_TTL and URL_VALIDITY must be positive")
	}
	// A cached URL must never outlive the URL itself
	if c.URLCacheTTL >= c.URLValidity {
		return fmt.Errorf("URL_CACHE_TTL (%s) must be shorter than URL_VALIDITY (%s)", c.URLCacheTTL, c.URLValidity)
	}
	if c.URLCacheSize <= 0 {
		return errors.New("URL_CACHE_SIZE must be positive")
	}
	switch c.StoreDriver {
	case "dynamodb", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
