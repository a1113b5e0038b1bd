package cookiestore

import "github.com/bluescreen10/apistore"

// ID is the identifier the cookie storage is registered under.
const ID = "cookie"

// Factory returns an apistore.Factory creating Stores configured with opts.
func Factory(opts ...Option) apistore.Factory {
	return func() (apistore.Storage, error) {
		return New(opts...), nil
	}
}

// Register registers the cookie storage under ID with the default
// registry, or defers the registration until the host drains it with
// apistore.DrainDeferred. The composition root calls it once.
func Register(opts ...Option) error {
	return apistore.RegisterOrDefer(ID, Factory(opts...))
}
