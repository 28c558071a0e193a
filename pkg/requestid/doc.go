// Package requestid tags every request with a correlation id.
//
// Middleware reads X-Request-ID, replaces it with a fresh UUID when missing
// or malformed, stores it in the request context and echoes it back in the
// response. LoggerExtractor plugs into logger.WithContextExtractors so every
// record logged with the request context carries request_id, next to the
// session_id added by session.LogExtractor.
//
//	log := logger.New(logger.WithContextExtractors(
//	    requestid.LoggerExtractor(),
//	    session.LogExtractor(nil),
//	))
//	handler := requestid.Middleware(manager.Middleware(app))
package requestid
