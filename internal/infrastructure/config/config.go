// Package config loads application configuration from the environment.
// A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTP
	Log      Log
	Postgres Postgres
	Hub      Hub
}

type HTTP struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

type Log struct {
	Level    string `env:"LOG_LEVEL" envDefault:"info"`
	Format   string `env:"LOG_FORMAT" envDefault:"console"` // json, text, console
	Output   string `env:"LOG_OUTPUT" envDefault:"stdout"`  // stdout, stderr, file
	FilePath string `env:"LOG_FILE_PATH"`
}

// Postgres configures the pool used for chat-owner lookups. An empty DSN
// disables the store; chat fan-out then skips identity targeting.
type Postgres struct {
	DSN      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"4"`
	MinConns int32  `env:"DATABASE_MIN_CONNS" envDefault:"0"`
}

type Hub struct {
	QueueCapacity  int           `env:"HUB_QUEUE_CAPACITY" envDefault:"1024"`
	PingInterval   time.Duration `env:"HUB_PING_INTERVAL" envDefault:"45s"`
	SweepInterval  time.Duration `env:"HUB_SWEEP_INTERVAL" envDefault:"60s"`
	StaleThreshold time.Duration `env:"HUB_STALE_THRESHOLD" envDefault:"5m"`
}

func Load() (*Config, error) {
	// The .env file is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
