package cache

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("cache: store closed")

// Store is the shared query cache the prefetch engine warms. Entries are
// keyed by the remote layer's query identifiers (see keys.go) and values
// are treated as opaque JSON-serializable payloads.
type Store interface {
	// Get unmarshals the entry for key into dest.
	// The bool reports whether a live (non-expired) entry was found.
	Get(ctx context.Context, key string, dest any) (bool, error)

	Set(ctx context.Context, key string, value any, opts Options) error

	Invalidate(ctx context.Context, key string) error

	// InvalidateAuthScoped removes every entry written with
	// Options.AuthScoped. Called on sign-out.
	InvalidateAuthScoped(ctx context.Context) error

	Close() error
}

type Options struct {
	// TTL of zero means the entry does not expire.
	TTL time.Duration

	// AuthScoped marks the entry's correctness as dependent on the
	// signed-in user.
	AuthScoped bool
}
