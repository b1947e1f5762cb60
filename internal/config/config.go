package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries every external endpoint the catalog service talks to.
// It is parsed once in main and passed explicitly into constructors.
type Config struct {
	HTTPPort string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	PostgresURL string `env:"POSTGRES_URL,required"`
	RabbitMQURL string `env:"RABBITMQ_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`

	OpenSearchAddresses []string `env:"OPENSEARCH_ADDRESSES,required"`
	OpenSearchUsername  string   `env:"OPENSEARCH_USERNAME,required"`
	OpenSearchPassword  string   `env:"OPENSEARCH_PASSWORD,required"`
	ProductIndex        string   `env:"OPENSEARCH_PRODUCT_INDEX" envDefault:"products"`

	ProductCacheTTL time.Duration `env:"PRODUCT_CACHE_TTL" envDefault:"5m"`
}

// Load reads a .env file when present, then parses the environment.
func Load() (Config, bool, error) {
	dotenvLoaded := godotenv.Load() == nil

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, dotenvLoaded, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, dotenvLoaded, nil
}
