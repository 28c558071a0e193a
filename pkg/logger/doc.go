// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// New creates a *slog.Logger from Option functions that select the output
// format (text or json), the minimum level, static attributes and
// ContextExtractor callbacks. Extractors run on every Handle call, so
// request-scoped values such as the current session id end up on each
// record logged with the request context.
//
// # Usage
//
//	import "github.com/dmitrymomot/httpsession/pkg/logger"
//
//	log := logger.New(
//	    logger.WithEnvironment("development", "sessiond"),
//	    logger.WithContextExtractors(session.LogExtractor(nil)),
//	)
//	log.InfoContext(r.Context(), "session persisted",
//	    logger.Store("redis"),
//	    logger.Duration(time.Since(start)),
//	)
//
// NewFromConfig builds the same logger from APP_ENV, APP_NAME, LOG_LEVEL and
// LOG_FORMAT.
//
// Helper functions Error and SessionID produce attributes only for non-empty
// values, allowing calls like
//
//	log.Info("operation finished", logger.Error(err))
//
// without an additional nil check.
package logger
