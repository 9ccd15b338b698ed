package taskqueue

import (
	"time"

	"github.com/dmitrymomot/taskqueue/pkg/config"
)

// Config holds the environment driven configuration of a Queue.
// An *IntervalMax value above its interval turns the fixed delay into a
// random range [Interval, IntervalMax).
type Config struct {
	AutoStart        bool          `env:"TASKQUEUE_AUTO_START" envDefault:"true"`
	Interval         time.Duration `env:"TASKQUEUE_INTERVAL" envDefault:"0s"`
	IntervalMax      time.Duration `env:"TASKQUEUE_INTERVAL_MAX" envDefault:"0s"`
	LaterInterval    time.Duration `env:"TASKQUEUE_LATER_INTERVAL" envDefault:"0s"`
	LaterIntervalMax time.Duration `env:"TASKQUEUE_LATER_INTERVAL_MAX" envDefault:"0s"`
	EventBuffer      int           `env:"TASKQUEUE_EVENT_BUFFER" envDefault:"64"`
}

// Options translates the config into queue options.
func (c Config) Options() []Option {
	return []Option{
		WithAutoStart(c.AutoStart),
		WithInterval(intervalFrom(c.Interval, c.IntervalMax)),
		WithLaterInterval(intervalFrom(c.LaterInterval, c.LaterIntervalMax)),
		WithEventBuffer(c.EventBuffer),
	}
}

func intervalFrom(lo, hi time.Duration) Interval {
	if hi > lo {
		return RandomRange(lo, hi)
	}
	return Fixed(lo)
}

// NewFromConfig creates a queue from cfg. Options in opts are applied
// after the config and win over it.
func NewFromConfig(cfg Config, opts ...Option) (*Queue, error) {
	return NewQueue(append(cfg.Options(), opts...)...)
}

// NewFromEnv loads Config from the environment and creates a queue.
func NewFromEnv(opts ...Option) (*Queue, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}
