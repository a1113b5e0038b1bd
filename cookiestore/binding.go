package cookiestore

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrNotBound is returned by the storage operations when the context does
// not carry a request, see Store.Handler and Bind.
var ErrNotBound = errors.New("cookiestore: context is not bound to a request")

type contextKey struct{}

// binding is the request a storage operation reads from and the response
// it writes Set-Cookie headers to.
type binding struct {
	w       http.ResponseWriter
	jar     Jar
	started func() bool
}

// responseWriter wraps http.ResponseWriter to notice when the headers are
// sent. Cookies set after that point would be lost.
type responseWriter struct {
	http.ResponseWriter
	isWritten atomic.Bool
}

// Write marks the response as started before writing the body.
func (w *responseWriter) Write(b []byte) (int, error) {
	w.isWritten.Store(true)
	return w.ResponseWriter.Write(b)
}

// WriteHeader marks the response as started before writing the headers.
func (w *responseWriter) WriteHeader(statusCode int) {
	w.isWritten.Store(true)
	w.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Handler wraps an http.Handler and binds every request to the cookie
// storage: the request cookies are parsed once and the storage operations
// called with the request context write to the response.
func (s *Store) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Cookie")

		rw := &responseWriter{ResponseWriter: w}
		b := &binding{w: w, jar: ParseRequest(r), started: rw.isWritten.Load}

		next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), contextKey{}, b)))
	})
}

// Bind returns a copy of ctx bound to r and w, for hosts that do not use
// Store.Handler. Writes made after the response started are not detected
// and are silently lost by net/http.
func Bind(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	b := &binding{w: w, jar: ParseRequest(r), started: func() bool { return false }}
	return context.WithValue(ctx, contextKey{}, b)
}

func bindingFrom(ctx context.Context) (*binding, error) {
	b, ok := ctx.Value(contextKey{}).(*binding)
	if !ok {
		return nil, ErrNotBound
	}
	return b, nil
}
