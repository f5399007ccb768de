package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config, servisin ortam değişkenlerinden okunan ayarlarını tutar.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":3000"`

	DatabaseURL      string        `envconfig:"DATABASE_URL" default:"user=postgres password=postgres dbname=playlists host=db sslmode=disable"`
	DBConnectRetries uint64        `envconfig:"DB_CONNECT_RETRIES" default:"10"`
	DBConnectBackoff time.Duration `envconfig:"DB_CONNECT_BACKOFF" default:"2s"`
	MigrateOnStart   bool          `envconfig:"MIGRATE_ON_START" default:"true"`

	// RedisHost boş bırakılırsa rate limiter sayaçları bellekte tutulur.
	RedisHost string `envconfig:"REDIS_HOST"`
	RedisPort int    `envconfig:"REDIS_PORT" default:"6379"`

	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"120"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	LogDevelopment bool `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

func NewConfig() (*Config, error) {
	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
