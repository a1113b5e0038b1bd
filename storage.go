package apistore

import "context"

// Storage defines the interface for key/value storage backends used by the
// API client. Values are addressed by a basename (usually the application
// or integration identifier), a group inside that basename (an account or a
// connection) and a key. Implementations may keep values in cookies, files,
// databases or memory.
type Storage interface {
	// Store stores a single value.
	Store(ctx context.Context, basename, group, key string, value Value) error

	// StoreMulti stores every entry of values, in slice order. It is not
	// atomic: a failure part way through leaves the earlier entries stored.
	StoreMulti(ctx context.Context, basename, group string, values []KeyValue) error

	// Retrieve returns the value stored under key, or the Null value if
	// nothing is stored. A missing value is not an error.
	Retrieve(ctx context.Context, basename, group, key string) (Value, error)

	// RetrieveMulti returns one entry per requested key, in the order the
	// keys were given. Keys without a stored value map to Null.
	RetrieveMulti(ctx context.Context, basename, group string, keys []string) ([]KeyValue, error)

	// Delete removes the value stored under key. Deleting a value that
	// does not exist is not an error.
	Delete(ctx context.Context, basename, group, key string) error

	// DeleteMulti deletes every key in order.
	DeleteMulti(ctx context.Context, basename, group string, keys []string) error
}

// KeyValue is a single key and its value. Slices of KeyValue are used where
// the order of the entries matters.
type KeyValue struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}
