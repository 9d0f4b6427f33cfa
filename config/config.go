package config

import "time"

// Config is parsed from the environment with the LOJA prefix,
// e.g. LOJA_WEB_ADDRESS, LOJA_DB_URI.
type Config struct {
	Web   Web
	Cors  Cors
	DB    DB
	Cache Cache
	Auth  Auth
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

type DB struct {
	URI  string `conf:"default:mongodb://localhost:27017"`
	Name string `conf:"default:loja"`
}

// Cache is optional: with an empty address the API runs without the
// cart read cache.
type Cache struct {
	Address  string
	Password string `conf:"mask"`
}

type Auth struct {
	SessionLifetime time.Duration `conf:"default:24h"`

	// Limits applied to the unauthenticated endpoints.
	RateBurst    int           `conf:"default:5"`
	RateInterval time.Duration `conf:"default:1s"`
	RateExpiry   int           `conf:"default:10"`
}
