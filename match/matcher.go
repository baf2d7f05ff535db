package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/filmdex/ai"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/storage"
)

// DefaultSimilarityFloor is the minimum cosine similarity a catalog entry
// must reach against a query before it is reported as a match.
const DefaultSimilarityFloor = 0.60

// Matcher resolves free-text queries to catalog entries by embedding
// similarity.
type Matcher struct {
	catalogRepository storage.CatalogRepository
	embedder          ai.Embedder
	minSimilarity     float32
	logger            *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithSimilarityFloor overrides the minimum similarity for matches.
// The floor must lie in [-1, 1].
func WithSimilarityFloor(floor float32) Option {
	return func(m *Matcher) error {
		if floor < -1 || floor > 1 {
			return ErrInvalidSimilarityFloor
		}
		m.minSimilarity = floor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMatcher creates a new matcher.
func NewMatcher(
	catalogRepository storage.CatalogRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Matcher, error) {
	if catalogRepository == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	m := &Matcher{
		catalogRepository: catalogRepository,
		embedder:          embedder,
		minSimilarity:     DefaultSimilarityFloor,
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// BestMatch returns the catalog entry closest to the query, or nil when no
// entry clears the similarity floor. An unmatched query is not an error.
func (m *Matcher) BestMatch(ctx context.Context, query string) (*core.SearchResult, error) {
	results, err := m.TopMatches(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// TopMatches returns up to maxHits entries ranked by similarity to the
// query. Entries committed without a vector are embedded on demand first,
// so a just-ingested film is immediately searchable.
func (m *Matcher) TopMatches(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	if maxHits < 1 {
		maxHits = 1
	}

	if err := m.ensureIndexed(ctx); err != nil {
		// Matching still works over the entries already indexed.
		m.logger.Warn("error indexing pending entries", "err", err)
	}

	embedding, err := m.embedder.EmbedText(ctx, query)
	if err != nil {
		m.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	results, err := m.catalogRepository.FindSimilar(ctx, embedding, m.minSimilarity, maxHits)
	if err != nil {
		m.logger.Error("error querying for similar entries", "err", err)
		return nil, err
	}

	return results, nil
}

// ensureIndexed backfills vectors for entries committed without one.
func (m *Matcher) ensureIndexed(ctx context.Context) error {
	pending, err := m.catalogRepository.ListUnindexed(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	m.logger.Info("indexing entries missing vectors", "entries", len(pending))

	texts := make([]string, len(pending))
	for i, entry := range pending {
		texts[i] = entry.EmbeddingText()
	}

	vectors, err := m.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(pending) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(pending), len(vectors))
	}

	for i, entry := range pending {
		if err := m.catalogRepository.PutVector(ctx, entry.Id, vectors[i]); err != nil {
			return err
		}
	}
	return nil
}
