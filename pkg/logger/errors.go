package logger

import "errors"

var (
	// ErrInvalidFormat is raised when an unknown output format is requested.
	ErrInvalidFormat = errors.New("logger: invalid log format")

	// ErrInvalidLevel is returned when a level name cannot be parsed.
	ErrInvalidLevel = errors.New("logger: invalid log level")
)
