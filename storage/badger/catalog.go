package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) *CatalogRepository {
	return &CatalogRepository{
		backend: backend,
	}
}

// Close releases repository resources. Entry IDs are content-derived, so
// there is no sequence to release.
func (r *CatalogRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *CatalogRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *CatalogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEntries inserts catalog entries with first-write-wins semantics.
// Each entry is checked and written in its own transaction, so uniqueness
// is atomic per insert and a fault mid-batch leaves every earlier insert
// committed. Entries whose canonical key is already present are skipped.
// Returns the entries actually inserted.
func (r *CatalogRepository) AddEntries(ctx context.Context, entries ...*core.CatalogEntry) ([]*core.CatalogEntry, error) {
	inserted := make([]*core.CatalogEntry, 0, len(entries))

	for _, entry := range entries {
		if err := core.ValidateEntry(entry); err != nil {
			return inserted, err
		}
		entry.Id = core.IDFromContent(entry.CanonicalKey)

		var skipped bool
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			key := makeEntryKey(entry.Id)

			_, err := tx.Get(key)
			if err == nil {
				// First write wins: key already present
				skipped = true
				return nil
			}
			if err != badger.ErrKeyNotFound {
				return err
			}

			entry.InsertedAt = time.Now().UTC()
			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return inserted, err
		}
		if !skipped {
			inserted = append(inserted, entry)
		}
	}

	return inserted, nil
}

// GetEntry retrieves a single entry by ID.
func (r *CatalogRepository) GetEntry(ctx context.Context, id core.ID) (*core.CatalogEntry, error) {
	var result *core.CatalogEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntry(tx, makeEntryKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetEntryByKey retrieves a single entry by its canonical key.
// IDs are content hashes of the canonical key, so this is a direct lookup.
func (r *CatalogRepository) GetEntryByKey(ctx context.Context, canonicalKey string) (*core.CatalogEntry, error) {
	return r.GetEntry(ctx, core.IDFromContent(canonicalKey))
}

// ListEntries returns a snapshot of all catalog entries.
func (r *CatalogRepository) ListEntries(ctx context.Context) ([]*core.CatalogEntry, error) {
	var results []*core.CatalogEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.CatalogEntry
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				entry, unmarshalErr = storage.UnmarshalEntry(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountEntries returns the number of entries in the catalog.
func (r *CatalogRepository) CountEntries(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// PutVector stores or replaces the embedding vector for an entry.
func (r *CatalogRepository) PutVector(ctx context.Context, id core.ID, vector []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(id), storage.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetVector retrieves the stored embedding vector for an entry.
// Returns nil, nil if no vector is stored.
func (r *CatalogRepository) GetVector(ctx context.Context, id core.ID) ([]float32, error) {
	var vector []float32
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			vector, unmarshalErr = storage.UnmarshalVector(val)
			return unmarshalErr
		})
	}, false)
	return vector, err
}

// ListUnindexed returns entries that have no stored embedding vector.
func (r *CatalogRepository) ListUnindexed(ctx context.Context) ([]*core.CatalogEntry, error) {
	entries, err := r.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	var missing []*core.CatalogEntry
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			_, err := tx.Get(makeVectorKey(entry.Id))
			if err == badger.ErrKeyNotFound {
				missing = append(missing, entry)
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return missing, err
}

// readEntry reads a catalog entry from the transaction.
// Returns nil, nil when the key does not exist.
func readEntry(tx *badger.Txn, key []byte) (*core.CatalogEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.CatalogEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalEntry(val)
		return unmarshalErr
	})
	return entry, err
}
