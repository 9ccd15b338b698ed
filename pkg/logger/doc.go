// Package logger builds *slog.Logger instances for services embedding the
// task queue and provides attribute helpers that keep log keys consistent.
//
// New assembles a text or JSON handler from functional options, attaches
// static attributes and wraps it with LogHandlerDecorator, which pulls
// request-scoped values out of context.Context on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(logger.EnvDevelopment, "mailer"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	logger.SetAsDefault(log)
//
//	log.Info("task finished",
//	    logger.TaskID(id),
//	    logger.Duration(time.Since(start)),
//	)
//
// # Configuration
//
// NewFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and APP_ENV through
// the config package. Explicit LOG_LEVEL and LOG_FORMAT values win over the
// environment presets.
//
// # Error Handling
//
// Error and Errors return an empty attribute for nil errors, so
//
//	log.Info("done", logger.Error(err))
//
// needs no nil check.
package logger
