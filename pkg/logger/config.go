package logger

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/taskqueue/pkg/config"
)

// Config holds environment driven logger settings.
type Config struct {
	Level   string `env:"LOG_LEVEL" envDefault:""`
	Format  string `env:"LOG_FORMAT" envDefault:""`
	Service string `env:"LOG_SERVICE" envDefault:""`
	Env     string `env:"APP_ENV" envDefault:"development"`
}

// Options translates the config into logger options.
// Level and Format, when set, override the environment defaults.
func (c Config) Options() ([]Option, error) {
	opts := []Option{WithEnvironment(c.Env, c.Service)}

	if c.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, errors.Join(ErrInvalidLevel, err)
		}
		opts = append(opts, WithLevel(lvl))
	}

	switch Format(strings.ToLower(c.Format)) {
	case "":
	case FormatJSON:
		opts = append(opts, WithJSONFormatter())
	case FormatText:
		opts = append(opts, WithTextFormatter())
	default:
		return nil, ErrInvalidFormat
	}

	return opts, nil
}

// NewFromConfig builds a logger from cfg followed by any extra options.
func NewFromConfig(cfg Config, extra ...Option) (*slog.Logger, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(append(opts, extra...)...), nil
}

// NewFromEnv loads Config from the environment (and .env) and builds a logger.
func NewFromEnv(extra ...Option) (*slog.Logger, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, extra...)
}
