// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env/v11, with optional .env files read
// through github.com/joho/godotenv.
//
// Load parses a struct type once and caches the result for the life of the
// process, which suits service-wide settings such as the task queue's
// Config. Parse skips the cache and accepts options for a key prefix, extra
// .env files, or an explicit variable map.
//
// # Usage
//
//	type QueueConfig struct {
//		AutoStart bool          `env:"QUEUE_AUTO_START" envDefault:"true"`
//		Interval  time.Duration `env:"QUEUE_INTERVAL" envDefault:"0s"`
//	}
//
//	var cfg QueueConfig
//	config.MustLoad(&cfg)
//
//	var other QueueConfig
//	err := config.Parse(&other, config.WithPrefix("BACKGROUND_"))
//
// # Error Handling
//
// Errors wrap ErrParsingConfig, ErrEnvFile or ErrNilPointer and can be
// matched with errors.Is.
package config
