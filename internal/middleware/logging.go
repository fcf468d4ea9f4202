// Package middleware contains HTTP middleware shared by all routes.
//
// WHAT IS MIDDLEWARE?
// Middleware is a function that wraps an HTTP handler to add cross-cutting
// behaviour (logging, auth, CORS, panic recovery) without touching the
// handler itself:
//
//	func MyMiddleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // before the handler runs
//	        next.ServeHTTP(w, r)
//	        // after the handler runs
//	    })
//	}
//
// This is the decorator pattern: the router sees one handler, but each
// request flows through every layer in the order they were registered with
// chi's Use. In this application the chain is
//
//	RequestID → RealIP → Logger → Recoverer → CORS → (RequireAuth) → handler
//
// Logger sits outside Recoverer so a recovered panic is still logged with
// its 500 status, and after RequestID so every line carries the request id.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter wraps http.ResponseWriter to capture the status code and
// the number of bytes written. The standard ResponseWriter does not expose
// either once the handler has returned, so the logger records them on the
// way through.
type responseWriter struct {
	http.ResponseWriter       // embedded: every method not overridden below is promoted as-is
	statusCode          int   // last status passed to WriteHeader
	written             int64 // body bytes written so far
}

// WriteHeader captures the status before delegating. Defining it on the
// wrapper shadows the embedded ResponseWriter's method.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write counts body bytes and delegates. A handler that never calls
// WriteHeader gets an implicit 200, which is why Logger seeds statusCode
// with http.StatusOK.
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger returns middleware that writes one structured slog line per
// request once the handler has finished:
//
//	level=INFO msg="request completed" method=GET path=/tasks status=200
//	    duration=1.2ms bytes=87 requestID=host/abc-000001 remoteAddr=10.0.0.7
//
// The level follows the outcome: 5xx at Error, 4xx at Warn, everything else
// at Info, so a production logger at Warn still shows every failure.
//
// Only the path is logged, never the query string or headers; the
// Authorization header carries a bearer token and must not reach the logs.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // if WriteHeader is never called
			}

			next.ServeHTTP(wrapped, r)

			level := slog.LevelInfo
			switch {
			case wrapped.statusCode >= 500:
				level = slog.LevelError
			case wrapped.statusCode >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
				slog.String("requestID", chimiddleware.GetReqID(r.Context())),
				slog.String("remoteAddr", r.RemoteAddr),
			)
		})
	}
}
