package apistore

import "net/http"

// Middleware defines the interface for HTTP middleware compatible with
// ServeMux. Storages that need the request, such as the cookie storage,
// implement it to bind themselves to each request.
type Middleware interface {
	Handler(http.Handler) http.Handler
}

// MiddlewareFunc adapts a plain function to the Middleware interface.
type MiddlewareFunc func(http.Handler) http.Handler

// Handler calls f(next).
func (f MiddlewareFunc) Handler(next http.Handler) http.Handler {
	return f(next)
}
