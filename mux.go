package apistore

import (
	"net/http"
	"strings"
)

// ServeMux is an http.ServeMux with middlewares and route groups. Storages
// that need the request, like the cookie storage, are mounted with
// StorageGroup so that every handler of the group runs bound to it.
//
// Usage:
//
//	mux := apistore.NewServeMux()
//	mux.Use(accessLog)
//
//	api := mux.StorageGroup("/storage", storage)
//	api.HandleFunc("GET /{basename}/{group}/{key}", retrieveHandler)
//
//	http.ListenAndServe(":8080", mux)
type ServeMux struct {
	*http.ServeMux
	middlewares []Middleware
	handler     http.Handler
}

// NewServeMux creates a new ServeMux instance.
func NewServeMux() *ServeMux {
	mux := &ServeMux{ServeMux: http.NewServeMux()}
	mux.handler = mux.ServeMux
	return mux
}

// chain wraps h so that middlewares run in the given order.
func chain(h http.Handler, middlewares []Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i].Handler(h)
	}
	return h
}

// Group creates a sub-router mounted under prefix. Requests reaching it go
// through middlewares, in the given order, after the middlewares of mux.
func (mux *ServeMux) Group(prefix string, middlewares ...Middleware) *ServeMux {
	prefix = strings.TrimSuffix(prefix, "/")
	subMux := NewServeMux()

	mux.Handle(prefix+"/", http.StripPrefix(prefix, chain(subMux, middlewares)))
	return subMux
}

// StorageGroup is Group for handlers calling s. If s is a Middleware it is
// mounted after middlewares, so the handlers see the request binding.
func (mux *ServeMux) StorageGroup(prefix string, s Storage, middlewares ...Middleware) *ServeMux {
	if mw, ok := s.(Middleware); ok {
		middlewares = append(middlewares[:len(middlewares):len(middlewares)], mw)
	}
	return mux.Group(prefix, middlewares...)
}

// Use adds a middleware applied to all routes registered on this mux. The
// chain is built here, not on every request.
func (mux *ServeMux) Use(mw Middleware) {
	mux.middlewares = append(mux.middlewares, mw)
	mux.handler = chain(mux.ServeMux, mux.middlewares)
}

// ServeHTTP implements http.Handler.
func (mux *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux.handler.ServeHTTP(w, r)
}
