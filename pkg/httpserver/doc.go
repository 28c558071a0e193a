// Package httpserver runs an http.Handler with graceful shutdown and
// background workers bound to the server lifetime.
//
// Run blocks until its context is cancelled or the process receives SIGINT
// or SIGTERM, then shuts the server down within the configured deadline,
// cancels the workers registered with WithWorker and waits for them. The
// sessiond binary uses a worker to sweep expired sessions while serving.
//
//	srv := httpserver.NewFromConfig(cfg,
//	    httpserver.WithLogger(log),
//	    httpserver.WithWorker(sweeper.Run),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//	    return err
//	}
//
// HealthCheckHandler serves liveness ("ALIVE") without checks and readiness
// ("READY" / "NOT_READY") with them, for example a store ping.
package httpserver
