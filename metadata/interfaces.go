package metadata

import "context"

// Resolver produces the descriptive text for a catalog entry.
// Implementations must be thread-safe for concurrent use.
type Resolver interface {
	// Resolve returns the description for an entry. A non-empty caption is
	// the description and suppresses any external lookup; otherwise the
	// resolver queries the external metadata service by canonical key.
	// Lookup failures degrade to sentinel descriptions (see the core
	// package), never to errors, and no retries are performed.
	Resolve(ctx context.Context, caption, canonicalKey string) string
}
