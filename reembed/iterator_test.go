package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/storage"
	"github.com/poiesic/filmdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (storage.CatalogRepository, func()) {
	catalogRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	cleanup := func() {
		catalogRepo.Close()
		backend.Close()
	}

	return catalogRepo, cleanup
}

// seedEntries inserts n entries with distinct canonical keys.
// Keys must differ because the catalog dedupes on key.
func seedEntries(t *testing.T, repo storage.CatalogRepository, n int) []*core.CatalogEntry {
	t.Helper()

	entries := make([]*core.CatalogEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = &core.CatalogEntry{
			CanonicalKey: fmt.Sprintf("seeded movie %d (2001)", i),
			Description:  fmt.Sprintf("Title: Seeded Movie %d", i),
			FileHandle:   fmt.Sprintf("file-handle-%d", i),
		}
	}
	added, err := repo.AddEntries(context.Background(), entries...)
	require.NoError(t, err)
	require.Len(t, added, n)
	return added
}

func TestEntryIterator_Basic(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedEntries(t, repo, 3)

	// Iterate all entries
	iter := NewEntryIterator(repo, 2) // Batch size of 2
	count := 0
	var ids []core.ID

	err := iter.ForEach(ctx, func(entries []*core.CatalogEntry) error {
		count += len(entries)
		for _, e := range entries {
			ids = append(ids, e.Id)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, count, "should iterate all 3 entries")
	assert.Len(t, ids, 3, "should have 3 IDs")
}

func TestEntryIterator_BatchSizes(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedEntries(t, repo, 10)

	tests := []struct {
		name          string
		batchSize     int
		expectedBatch int
	}{
		{"batch size 1", 1, 10},
		{"batch size 3", 3, 4}, // 3+3+3+1
		{"batch size 5", 5, 2}, // 5+5
		{"batch size 10", 10, 1},
		{"batch size 100", 100, 1}, // All in one batch
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewEntryIterator(repo, tt.batchSize)
			batchCount := 0
			totalEntries := 0

			err := iter.ForEach(ctx, func(entries []*core.CatalogEntry) error {
				batchCount++
				totalEntries += len(entries)
				assert.LessOrEqual(t, len(entries), tt.batchSize, "batch should not exceed batchSize")
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBatch, batchCount, "batch count")
			assert.Equal(t, 10, totalEntries, "total entries")
		})
	}
}

func TestEntryIterator_EmptyCatalog(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	iter := NewEntryIterator(repo, 10)
	called := false

	err := iter.ForEach(ctx, func(entries []*core.CatalogEntry) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called, "callback should not be called for empty catalog")
}

func TestEntryIterator_ErrorHandling(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seedEntries(t, repo, 2)

	iter := NewEntryIterator(repo, 1)
	called := 0

	expectedErr := assert.AnError
	err := iter.ForEach(ctx, func(entries []*core.CatalogEntry) error {
		called++
		if called == 1 {
			return expectedErr
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return callback error")
	assert.Equal(t, 1, called, "should stop on first error")
}

func TestEntryIterator_ContextCancellation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	seedEntries(t, repo, 5)

	iter := NewEntryIterator(repo, 1)
	called := 0

	err := iter.ForEach(ctx, func(entries []*core.CatalogEntry) error {
		called++
		if called == 2 {
			cancel()
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, called, "should process until context canceled")
}

func TestEntryIterator_InvalidBatchSize(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	// Zero batch size should be handled gracefully
	iter := NewEntryIterator(repo, 0)
	assert.Greater(t, iter.batchSize, 0, "should use default batch size for invalid input")

	// Negative batch size
	iter = NewEntryIterator(repo, -10)
	assert.Greater(t, iter.batchSize, 0, "should use default batch size for negative input")
}
