// Package cookiestore provides a storage that keeps values in HTTP cookies.
//
// Each value is written to its own cookie named basename[group][key] and
// read back from the cookies the client sends with the next request. There
// is no server side state: a stored value is visible from the next request
// on, and a deleted value keeps reading back until the next request too.
//
// The operations need the current request and response, which the Store
// takes from the context installed by its Handler middleware.
//
// Usage:
//
//	store := cookiestore.New(cookiestore.WithSecure(true))
//
//	mux := http.NewServeMux()
//	mux.Handle("/", store.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    token, _ := store.Retrieve(r.Context(), "app", "acct1", "token")
//	    if token.IsNull() {
//	        store.Store(r.Context(), "app", "acct1", "token", apistore.String("abc123"))
//	    }
//	    fmt.Fprintf(w, "token: %s\n", token)
//	})))
//
//	http.ListenAndServe(":8080", mux)
package cookiestore

import (
	"context"
	"net/http"
	"time"

	"github.com/bluescreen10/apistore"
	"github.com/bluescreen10/apistore/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// DefaultExpiredOffset is how far in the past the expiry of a deleted
// cookie is set.
const DefaultExpiredOffset = time.Hour

var (
	_ apistore.Storage    = &Store{}
	_ apistore.Middleware = &Store{}
)

// Store is a cookie backed apistore.Storage.
type Store struct {
	path          string
	domain        string
	secure        bool
	httpOnly      bool
	partitioned   bool
	sameSite      http.SameSite
	lifetime      time.Duration
	expiredOffset time.Duration
	logger        logrus.FieldLogger
	metrics       *metrics.Cookie
	now           func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPath sets the cookie path. (default "/".)
func WithPath(path string) Option {
	return func(s *Store) {
		s.path = path
	}
}

// WithDomain sets the cookie domain. (default "".)
func WithDomain(domain string) Option {
	return func(s *Store) {
		s.domain = domain
	}
}

// WithSecure sets the Secure flag on the cookies. (default false)
func WithSecure(secure bool) Option {
	return func(s *Store) {
		s.secure = secure
	}
}

// WithHttpOnly sets the HttpOnly flag on the cookies. (default true)
func WithHttpOnly(httpOnly bool) Option {
	return func(s *Store) {
		s.httpOnly = httpOnly
	}
}

// WithPartitioned sets the Partitioned flag on the cookies. (default false)
func WithPartitioned(partitioned bool) Option {
	return func(s *Store) {
		s.partitioned = partitioned
	}
}

// WithSameSite sets the SameSite policy for the cookies. (default Lax)
func WithSameSite(sameSite http.SameSite) Option {
	return func(s *Store) {
		s.sameSite = sameSite
	}
}

// WithLifetime makes stored cookies persistent for lifetime. (default 0,
// session cookies.)
func WithLifetime(lifetime time.Duration) Option {
	return func(s *Store) {
		s.lifetime = lifetime
	}
}

// WithExpiredOffset sets how far in the past deleted cookies expire.
// Non-positive offsets are ignored. (default one hour)
func WithExpiredOffset(offset time.Duration) Option {
	return func(s *Store) {
		if offset > 0 {
			s.expiredOffset = offset
		}
	}
}

// WithLogger sets the logger. (default logrus.StandardLogger())
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics registers the operation counters with reg. (default none)
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Store) {
		s.metrics = metrics.NewCookie(reg)
	}
}

// New creates a new cookie Store.
func New(opts ...Option) *Store {
	s := &Store{
		path:          "/",
		httpOnly:      true,
		sameSite:      http.SameSiteLaxMode,
		expiredOffset: DefaultExpiredOffset,
		logger:        logrus.StandardLogger(),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Store sets the cookie basename[group][key] to value. Storing Null
// deletes the cookie. If the response has already started the cookie
// cannot be sent and is dropped without error.
func (s *Store) Store(ctx context.Context, basename, group, key string, value apistore.Value) error {
	b, err := bindingFrom(ctx)
	if err != nil {
		return err
	}

	if value.IsNull() {
		s.expire(b, basename, group, key)
		return nil
	}

	var expires time.Time
	if s.lifetime > 0 {
		expires = s.now().Add(s.lifetime)
	}

	s.write(b, "store", basename, group, key, value.String(), expires)
	return nil
}

// StoreMulti stores every entry of values in order.
func (s *Store) StoreMulti(ctx context.Context, basename, group string, values []apistore.KeyValue) error {
	for _, kv := range values {
		if err := s.Store(ctx, basename, group, kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// Retrieve returns the value of the cookie basename[group][key] sent with
// the current request, or Null.
func (s *Store) Retrieve(ctx context.Context, basename, group, key string) (apistore.Value, error) {
	b, err := bindingFrom(ctx)
	if err != nil {
		return apistore.Null(), err
	}

	s.metrics.Operation("retrieve")

	v, ok := b.jar.Lookup(basename, group, key)
	if !ok {
		return apistore.Null(), nil
	}
	return apistore.String(v), nil
}

// RetrieveMulti returns the values of keys in the order given.
func (s *Store) RetrieveMulti(ctx context.Context, basename, group string, keys []string) ([]apistore.KeyValue, error) {
	b, err := bindingFrom(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.Operation("retrieve_multi")

	values := make([]apistore.KeyValue, len(keys))
	for i, key := range keys {
		values[i].Key = key
	}

	data, ok := b.jar.Node(basename, group)
	if !ok || data.IsScalar() {
		return values, nil
	}

	for i, key := range keys {
		n, ok := data.Children[key]
		if !ok || !n.IsScalar() {
			continue
		}
		values[i].Value = apistore.String(n.Value)
	}
	return values, nil
}

// Delete expires the cookie basename[group][key]. The current request keeps
// seeing the old value.
func (s *Store) Delete(ctx context.Context, basename, group, key string) error {
	b, err := bindingFrom(ctx)
	if err != nil {
		return err
	}

	s.expire(b, basename, group, key)
	return nil
}

// DeleteMulti deletes every key in order.
func (s *Store) DeleteMulti(ctx context.Context, basename, group string, keys []string) error {
	for _, key := range keys {
		if err := s.Delete(ctx, basename, group, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) expire(b *binding, basename, group, key string) {
	s.write(b, "delete", basename, group, key, "", s.now().Add(-s.expiredOffset))
}

func (s *Store) write(b *binding, op, basename, group, key, value string, expires time.Time) {
	name := CookieName(basename, group, key)
	log := s.logger.WithFields(logrus.Fields{
		"op":       op,
		"basename": basename,
		"group":    group,
		"key":      key,
	})

	if !validName(name) {
		s.metrics.Dropped(metrics.DropInvalidName)
		log.Warn("cookie name is not valid, value not written")
		return
	}

	if b.started() {
		s.metrics.Dropped(metrics.DropResponseStarted)
		log.Warn("response already started, cookie not written")
		return
	}

	b.w.Header().Add("Set-Cookie", s.setCookie(name, value, expires))
	s.metrics.Operation(op)
	log.Debug("cookie written")
}
