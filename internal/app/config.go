package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	defaultMigrationsDir     = "./migrations"
	defaultRequestsPerMinute = 120
	defaultLimitKeyTemplate  = "ratelimit:{client}:{window}"
)

type Config struct {
	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	RateLimit struct {
		Enabled           bool   `toml:"enabled"`
		RedisURL          string `toml:"redis_url"`
		RequestsPerMinute int    `toml:"requests_per_minute"`
		KeyTemplate       string `toml:"key_template"`
	} `toml:"ratelimit"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("server port is not specified in config, use a value like :8080")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is not specified in config")
	}

	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = defaultMigrationsDir
	}
	if config.RateLimit.RequestsPerMinute <= 0 {
		config.RateLimit.RequestsPerMinute = defaultRequestsPerMinute
	}
	if config.RateLimit.KeyTemplate == "" {
		config.RateLimit.KeyTemplate = defaultLimitKeyTemplate
	}

	logger.Debug.Printf("Loaded rate limit config: %+v", config.RateLimit)

	return &config, nil
}
