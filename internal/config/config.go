// internal/config/config.go
//
// Typed configuration for the resolution service, resolved once at startup
// from environment variables and passed into every component that needs it.
// Admin identity lives here, not in ambient globals.

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting of the service.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	DBPath       string `env:"DB_PATH" envDefault:"./data/resolver.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"stellarcade_token"`
	SecureCookies  bool   `env:"SECURE_COOKIES" envDefault:"false"`

	// Admin credentials seeded into the users table at startup. The admin
	// user may create, reveal, and finalize puzzles.
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:""`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
