// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package filmdex

import (
	"io"
	"log/slog"

	"github.com/poiesic/filmdex/ai"
	"github.com/poiesic/filmdex/ai/openai"
	"github.com/poiesic/filmdex/channel"
	"github.com/poiesic/filmdex/ingestion"
	"github.com/poiesic/filmdex/match"
	"github.com/poiesic/filmdex/metadata"
	"github.com/poiesic/filmdex/reembed"
	"github.com/poiesic/filmdex/storage"
	"github.com/poiesic/filmdex/storage/badger"
)

// Database wires the catalog store and the embedding service into one
// handle and hands out the pipeline, matcher, and reembedder built on them.
type Database struct {
	backend     *badger.Backend
	catalogRepo storage.CatalogRepository
	cursorRepo  storage.CursorRepository
	embedder    ai.Embedder
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create repositories
	catalogRepo := badger.NewCatalogRepository(backend)
	cursorRepo := badger.NewCursorRepository(backend)

	// Create embedder with configured settings
	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		catalogRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:     backend,
		catalogRepo: catalogRepo,
		cursorRepo:  cursorRepo,
		embedder:    embedder,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close repositories
	if err := db.catalogRepo.Close(); err != nil {
		db.logger.Error("error closing catalog repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) CatalogRepository() storage.CatalogRepository {
	return db.catalogRepo
}

func (db *Database) CursorRepository() storage.CursorRepository {
	return db.cursorRepo
}

func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

// NewIngestionPipeline builds a pipeline consuming from client onto this
// database. The channel client and metadata resolver are per-deployment,
// so the caller supplies them.
func (db *Database) NewIngestionPipeline(client channel.Client, resolver metadata.Resolver, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.catalogRepo, db.cursorRepo, client, resolver, db.embedder, opts...)
}

func (db *Database) NewMatcher(opts ...match.Option) (*match.Matcher, error) {
	return match.NewMatcher(db.catalogRepo, db.embedder, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.catalogRepo, db.embedder, config, progress)
}
