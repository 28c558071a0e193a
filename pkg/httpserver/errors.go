package httpserver

import "errors"

var (
	// ErrStart indicates that the server failed to start.
	ErrStart = errors.New("httpserver.start")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("httpserver.shutdown")
	// ErrAlreadyRunning is returned by Run on a server that is serving.
	ErrAlreadyRunning = errors.New("httpserver.already_running")
)
