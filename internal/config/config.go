package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

type Config struct {
	Port        string `env:"PORT,default=8080"`
	DatabaseDSN string `env:"DATABASE_DSN,default=file:invoicing.db"`
	Env         string `env:"APP_ENV,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load reads configuration from the environment. Precedence: explicit env
// var > .env file (loaded by the caller via godotenv) > struct default.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}
