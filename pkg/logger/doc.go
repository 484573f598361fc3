// Package logger builds *slog.Logger instances from functional options and
// provides attribute helpers so every component logs with the same keys.
//
// New picks a text or JSON handler. WithExtractors wraps a logger so that
// the registered ContextExtractor callbacks run on every record; the HTTP
// frontend uses it to attach the request id to each log line.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithConfig(cfg, "remail"),
//	    logger.WithOutput(os.Stderr),
//	)
//	log = logger.WithExtractors(log, requestIDAttr)
//
//	log.InfoContext(ctx, "job delivered",
//	    logger.JobID(token.ID()),
//	    logger.Backend("postmark"),
//	    logger.Duration(time.Since(start)),
//	)
//
// # Configuration
//
// Config is loaded from APP_ENV, LOG_LEVEL and LOG_FORMAT. APP_ENV selects the
// defaults (development: text at debug level; staging and production: JSON at
// info level) and the other two override them.
//
// Error returns an empty attribute for nil errors, so
//
//	log.Info("operation finished", logger.Error(err))
//
// needs no nil check.
package logger
