// internal/config/config.go
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config aggregates all configuration sections. Fields are populated from
// environment variables; cmd mains load a .env file first, so local setups
// work the same as deployed ones.
type Config struct {
	Env string `env:"ENV" envDefault:"dev"`

	HTTP   HTTP   `envPrefix:"HTTP_"`
	Store  Store  `envPrefix:"STORE_"`
	Worker Worker `envPrefix:"WORKER_"`
	SMTP   SMTP   `envPrefix:"SMTP_"`
	Log    Log    `envPrefix:"LOG_"`
	App    App    `envPrefix:"APP_"`
}

type HTTP struct {
	Port uint16 `env:"PORT" envDefault:"8080"`
}

// Store points both processes at the same single-file database.
type Store struct {
	Path string `env:"PATH" envDefault:"data/outreach.db"`
	// BusyTimeout is how long a logical operation waits for the other
	// process to release the write lock.
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" envDefault:"5s"`
}

type Worker struct {
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"20s"`
}

type SMTP struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Pretty bool   `env:"PRETTY" envDefault:"true"`
}

// ZerologLevel converts the textual level. Unknown levels default to info.
func (l Log) ZerologLevel() zerolog.Level {
	switch strings.ToLower(l.Level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type App struct {
	// Timezone is the fixed default for the display-timezone resolver;
	// a persisted setting or runtime override takes precedence over it.
	Timezone string `env:"TIMEZONE" envDefault:"Europe/Rome"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
