package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/filmdex/ai"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/storage"
)

// embeddingProcessor generates vectors for committed catalog entries.
type embeddingProcessor struct {
	catalogRepository storage.CatalogRepository
	embedder          ai.Embedder
	logger            *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(catalogRepository storage.CatalogRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if catalogRepository == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		catalogRepository: catalogRepository,
		embedder:          embedder,
		logger:            logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the entries' descriptive text and stores the vectors in the
// catalog's side index. Entries whose description is empty or a lookup
// sentinel are embedded by canonical key instead.
func (ep *embeddingProcessor) process(ctx context.Context, entries ...*core.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ep.logger.Info("indexing catalog entries", "entries", len(entries))

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.EmbeddingText()
	}

	vectors, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(vectors) != len(entries) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(entries), len(vectors))
	}

	for i, entry := range entries {
		if err := ep.catalogRepository.PutVector(ctx, entry.Id, vectors[i]); err != nil {
			ep.logger.Error("error storing entry vector", "id", entry.Id, "err", err)
			return err
		}
	}

	return nil
}
