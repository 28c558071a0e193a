package logger

import (
	"log/slog"
	"time"
)

// Attribute keys shared by every package logging through this one, so log
// queries can rely on them.
const (
	KeyError     = "error"
	KeySessionID = "session_id"
	KeyRequestID = "request_id"
	KeyStore     = "store"
	KeyOp        = "op"
	KeyDuration  = "duration"
	KeyComponent = "component"
)

// Error records err under KeyError. A nil err yields an empty Attr, which
// handlers drop.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// SessionID records a session id. Empty ids yield an empty Attr.
func SessionID(id string) slog.Attr {
	return optionalString(KeySessionID, id)
}

// RequestID records a request id. Empty ids yield an empty Attr.
func RequestID(id string) slog.Attr {
	return optionalString(KeyRequestID, id)
}

// Store names the session backend, e.g. "redis".
func Store(name string) slog.Attr { return slog.String(KeyStore, name) }

// Op names a store operation, e.g. "touch".
func Op(name string) slog.Attr { return slog.String(KeyOp, name) }

func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

func optionalString(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}
