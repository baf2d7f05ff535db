package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/filmdex/ai"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/storage"
)

// BatchProcessor handles embedding generation for batches of catalog entries.
type BatchProcessor struct {
	repo           storage.CatalogRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.CatalogRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of entries and replaces their
// vectors in the index. Vectors are normalized after embedding so stored
// magnitudes stay uniform regardless of the model that produced them.
func (bp *BatchProcessor) Process(ctx context.Context, entries []*core.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	// Embed the same text the matcher queries against
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.EmbeddingText()
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(entries) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(entries), len(embeddings))
	}

	// Normalize and store each vector
	for i, entry := range entries {
		if err := bp.repo.PutVector(ctx, entry.Id, NormalizeVector(embeddings[i])); err != nil {
			return fmt.Errorf("failed to store vector for entry %d: %w", entry.Id, err)
		}
	}

	return nil
}
