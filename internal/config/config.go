// Package config loads server configuration from the process environment.
//
// WHY AN EXPLICIT CONFIG STRUCT?
// All environment lookups happen here, once, at startup. The resulting
// struct is passed into constructors (server.New, auth.NewTokenService, ...)
// so business logic never reaches into the ambient environment. That makes
// the dependency on configuration visible in function signatures and lets
// tests construct a Config literal instead of mutating os.Environ.
//
// WHY caarlos0/env?
// The env struct tags declare the variable name and default next to the
// field they populate — no hand-written os.Getenv/strconv boilerplate, and
// parsing errors (e.g. a non-numeric PORT) surface as a single error from
// Load instead of a silent fallback.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// minSecretLen is the minimum accepted JWT secret length in bytes.
// HS256 security degrades quickly with short keys; 16 is a floor, not a
// recommendation — generate a real secret with `openssl rand -hex 32`.
const minSecretLen = 16

// Config holds all server configuration parameters.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"5000"`

	// FrontendOrigin is the browser origin of the LocalLynk frontend.
	// CORS allows credentialed requests from this origin only.
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`

	// JWTSecret signs and verifies session tokens. Required.
	JWTSecret string `env:"JWT_SECRET"`

	// DBPath is the SQLite database file. ":memory:" works for local
	// experiments but loses all accounts on restart.
	DBPath string `env:"DB_PATH" envDefault:"data/locallynk.db"`

	// BcryptCost is the bcrypt work factor for password hashing.
	// 10 takes roughly 60–100ms on current server hardware.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists (local development convenience —
// production deployments set real environment variables).
func Load() (*Config, error) {
	// Missing .env is the normal case outside development, so the error
	// is ignored deliberately.
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if len(cfg.JWTSecret) < minSecretLen {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLen)
	}

	return &cfg, nil
}
