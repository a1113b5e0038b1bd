// Package logger provides an HTTP middleware logging every request as a
// structured logrus entry.
//
// Entries carry the fields status, latency, ip, method and path.
//
// Usage:
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
//		w.Write([]byte("Hello, world!"))
//	})
//
//	l := logger.New(logger.WithLogger(logrus.StandardLogger()))
//
//	http.ListenAndServe(":8080", l.Handler(mux))
package logger

import (
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultMessage = "request served"

// responseWriter wraps http.ResponseWriter to capture the response status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before delegating to the underlying ResponseWriter.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger is a middleware that captures request details and writes them to
// a logrus logger.
type Logger struct {
	logger  logrus.FieldLogger
	message string
}

// Option configures a Logger.
type Option func(*Logger)

// WithLogger sets the destination logger. (default logrus.StandardLogger())
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Logger) {
		l.logger = logger
	}
}

// WithMessage sets the message of the entries. (default "request served")
func WithMessage(message string) Option {
	return func(l *Logger) {
		l.message = message
	}
}

// Handler wraps an http.Handler and logs each request once it is served.
// Server errors are logged at error level, everything else at info.
func (l *Logger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(rw, r)

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		entry := l.logger.WithFields(logrus.Fields{
			"status":  rw.statusCode,
			"latency": time.Since(start).String(),
			"ip":      ip,
			"method":  r.Method,
			"path":    r.URL.Path,
		})

		if rw.statusCode >= http.StatusInternalServerError {
			entry.Error(l.message)
			return
		}
		entry.Info(l.message)
	})
}

// New creates a new Logger middleware with optional configuration.
func New(opts ...Option) *Logger {
	lgr := &Logger{
		logger:  logrus.StandardLogger(),
		message: defaultMessage,
	}

	for _, opt := range opts {
		opt(lgr)
	}

	return lgr
}
