package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/filmdex/ai"
	"github.com/poiesic/filmdex/channel"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/metadata"
	"github.com/poiesic/filmdex/storage"
)

// DefaultConsumer is the cursor name used when none is configured.
const DefaultConsumer = "channel-ingest"

// Pipeline pulls new channel messages, canonicalizes their captions,
// resolves descriptions, and commits new catalog entries. It owns the
// durable cursor for its consumer name and indexes committed entries
// asynchronously through a worker pool.
type Pipeline struct {
	catalogRepository storage.CatalogRepository
	cursorRepository  storage.CursorRepository
	client            channel.Client
	resolver          metadata.Resolver
	embeddingPool     *ants.Pool
	embeddingProc     *embeddingProcessor
	consumer          string
	running           atomic.Bool
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for asynchronous indexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithConsumer sets the cursor name this pipeline consumes under.
// Default is DefaultConsumer.
func WithConsumer(name string) Option {
	return func(p *Pipeline) error {
		if name == "" {
			return core.ErrEmptyConsumer
		}
		p.consumer = name
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	catalogRepository storage.CatalogRepository,
	cursorRepository storage.CursorRepository,
	client channel.Client,
	resolver metadata.Resolver,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if catalogRepository == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if cursorRepository == nil {
		return nil, ErrCursorRepositoryRequired
	}
	if client == nil {
		return nil, ErrChannelClientRequired
	}
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		catalogRepository: catalogRepository,
		cursorRepository:  cursorRepository,
		client:            client,
		resolver:          resolver,
		embeddingPool:     embeddingPool,
		consumer:          DefaultConsumer,
		logger:            slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied (so it gets final config)
	embeddingProc, err := newEmbeddingProcessor(catalogRepository, embedder, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// RunCycle performs one ingestion pass: it reads the cursor, fetches every
// message past it, advances the cursor per message, and batch-commits new
// catalog entries. At most one cycle runs at a time; a second concurrent
// call returns ErrCycleInProgress. Committed entries are indexed
// asynchronously, and indexing errors are logged, never returned.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrCycleInProgress
	}
	defer p.running.Store(false)

	since := int64(0)
	cursor, err := p.cursorRepository.LoadCursor(ctx, p.consumer)
	if err != nil {
		p.logger.Error("error loading ingestion cursor", "consumer", p.consumer, "err", err)
		return err
	}
	if cursor != nil {
		since = cursor.LastConsumedID
	}

	p.logger.Info("starting ingestion cycle", "consumer", p.consumer, "since", since)

	messages, err := p.client.GetMessages(ctx, since)
	if err != nil {
		return p.handleChannelError(ctx, err)
	}

	staged, cursorErr := p.consume(ctx, messages)

	var committed []*core.CatalogEntry
	if len(staged) > 0 {
		committed, err = p.catalogRepository.AddEntries(ctx, staged...)
		if err != nil {
			// Whatever subset persisted before the failure stays committed.
			p.logger.Error("error committing catalog entries",
				"staged", len(staged), "committed", len(committed), "err", err)
		}
	}

	if len(committed) > 0 {
		p.submitIndexing(committed)
	}

	p.logger.Info("ingestion cycle complete",
		"messages", len(messages), "staged", len(staged), "committed", len(committed))

	return cursorErr
}

// consume advances the cursor past each message and stages catalog entries
// for the ones carrying a file attachment. The cursor write happens before
// the batch commit: a crash between the two drops the in-flight messages
// rather than reprocessing them on the next cycle.
func (p *Pipeline) consume(ctx context.Context, messages []channel.Message) ([]*core.CatalogEntry, error) {
	staged := make([]*core.CatalogEntry, 0, len(messages))
	for _, msg := range messages {
		cursor := &core.Cursor{Consumer: p.consumer, LastConsumedID: msg.ID}
		if err := p.cursorRepository.SaveCursor(ctx, cursor); err != nil {
			p.logger.Error("error advancing ingestion cursor",
				"consumer", p.consumer, "position", msg.ID, "err", err)
			return staged, err
		}

		if msg.FileHandle == "" {
			continue
		}

		key := core.Normalize(msg.Caption)
		staged = append(staged, &core.CatalogEntry{
			CanonicalKey: key,
			Description:  p.resolver.Resolve(ctx, msg.Caption, key),
			FileHandle:   msg.FileHandle,
		})
	}
	return staged, nil
}

// submitIndexing hands committed entries to the worker pool for embedding.
func (p *Pipeline) submitIndexing(entries []*core.CatalogEntry) {
	p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), entries...); err != nil {
			p.logger.Error("error indexing catalog entries", "err", err)
		}
	})
}

// handleChannelError maps a failed fetch onto the cycle's abort behavior:
// rate limits sleep for the advised duration, conflicts and authorization
// failures abort immediately. All of them end the cycle, none the process.
func (p *Pipeline) handleChannelError(ctx context.Context, err error) error {
	var rateLimit *channel.RateLimitError
	switch {
	case errors.As(err, &rateLimit):
		p.logger.Warn("channel rate limited, backing off", "retry_after", rateLimit.RetryAfter)
		p.sleep(ctx, rateLimit.RetryAfter)
	case errors.Is(err, channel.ErrConflict):
		p.logger.Error("another consumer is reading the channel, aborting cycle", "err", err)
	case errors.Is(err, channel.ErrUnauthorized):
		p.logger.Error("channel authorization failed, operator intervention required", "err", err)
	default:
		p.logger.Error("error fetching channel messages", "err", err)
	}
	return err
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
