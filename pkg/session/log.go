package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/httpsession/pkg/logger"
)

// LogExtractor returns a logger.ContextExtractor adding the id of the
// session attached under key to every record logged with a request context.
// A nil key means the default context key.
func LogExtractor(key any) logger.ContextExtractor {
	if key == nil {
		key = sessionContextKey{}
	}
	return func(ctx context.Context) (slog.Attr, bool) {
		if ctx == nil {
			return slog.Attr{}, false
		}
		s, ok := ctx.Value(key).(interface{ ID() string })
		if !ok {
			return slog.Attr{}, false
		}
		return logger.SessionID(s.ID()), true
	}
}
