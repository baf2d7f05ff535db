package storage

import (
	"context"

	"github.com/poiesic/filmdex/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CatalogRepository provides operations for the catalog and its vector index.
type CatalogRepository interface {
	Repository

	// AddEntries inserts catalog entries, enforcing first-write-wins per
	// canonical key: an entry whose key is already present is silently
	// skipped, never overwritten, never an error. Each insert is atomic on
	// its own, so a fault mid-batch leaves everything inserted before it
	// durably committed; the error is returned for the caller to report.
	// Derives Id from CanonicalKey and sets InsertedAt on inserted entries.
	// Returns only the entries actually inserted.
	AddEntries(ctx context.Context, entries ...*core.CatalogEntry) ([]*core.CatalogEntry, error)

	// GetEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.CatalogEntry, error)

	// GetEntryByKey retrieves a single entry by its canonical key.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntryByKey(ctx context.Context, canonicalKey string) (*core.CatalogEntry, error)

	// ListEntries returns a full snapshot of the catalog. Ordering is not
	// guaranteed beyond being stable within one process.
	ListEntries(ctx context.Context) ([]*core.CatalogEntry, error)

	// CountEntries returns the number of entries in the catalog.
	CountEntries(ctx context.Context) (int, error)

	// PutVector stores or replaces the embedding vector for an entry.
	// The vector index is derived state: it is never the source of truth
	// and may be rebuilt from the entries at any time.
	PutVector(ctx context.Context, id core.ID, vector []float32) error

	// GetVector retrieves the stored embedding vector for an entry.
	// Returns nil, nil if no vector is stored.
	GetVector(ctx context.Context, id core.ID) ([]float32, error)

	// ListUnindexed returns entries that have no stored embedding vector.
	ListUnindexed(ctx context.Context) ([]*core.CatalogEntry, error)

	// FindSimilar finds catalog entries whose vectors are similar to the
	// given vector. Returns entries with similarity >= minSimilarity, up to
	// limit results, ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}

// CursorRepository provides durable ingestion cursors, one per consumer name.
type CursorRepository interface {
	// SaveCursor persists a cursor. Sets UpdatedAt.
	SaveCursor(ctx context.Context, cursor *core.Cursor) error

	// LoadCursor retrieves the cursor for a consumer.
	// Returns nil, nil if no cursor has been saved yet.
	LoadCursor(ctx context.Context, consumer string) (*core.Cursor, error)
}
