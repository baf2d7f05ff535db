package ingestion

import "errors"

var (
	// ErrCatalogRepositoryRequired is returned when a catalog repository is not provided.
	ErrCatalogRepositoryRequired = errors.New("catalog repository required")

	// ErrCursorRepositoryRequired is returned when a cursor repository is not provided.
	ErrCursorRepositoryRequired = errors.New("cursor repository required")

	// ErrChannelClientRequired is returned when a channel client is not provided.
	ErrChannelClientRequired = errors.New("channel client required")

	// ErrResolverRequired is returned when a metadata resolver is not provided.
	ErrResolverRequired = errors.New("metadata resolver required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCycleInProgress is returned when RunCycle is invoked while an
	// earlier cycle is still running.
	ErrCycleInProgress = errors.New("ingestion cycle already in progress")
)
