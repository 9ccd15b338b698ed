package taskqueue

import "log/slog"

// Option is a functional option for configuring a Queue
type Option func(*options)

type options struct {
	autoStart      bool
	normalInterval Interval
	laterInterval  Interval
	eventBuffer    int
	logger         *slog.Logger
}

// WithAutoStart controls whether submitting tasks starts the queue.
// Enabled by default.
func WithAutoStart(enabled bool) Option {
	return func(o *options) {
		o.autoStart = enabled
	}
}

// WithInterval sets the delay applied before a task from the normal list
func WithInterval(i Interval) Option {
	return func(o *options) {
		o.normalInterval = i
	}
}

// WithLaterInterval sets the delay applied before a task from the later list
func WithLaterInterval(i Interval) Option {
	return func(o *options) {
		o.laterInterval = i
	}
}

// WithEventBuffer sets the per-subscriber event buffer size
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.eventBuffer = n
		}
	}
}

// WithLogger sets the logger for the queue
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
