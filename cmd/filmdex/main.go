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


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/poiesic/filmdex"
	"github.com/poiesic/filmdex/ai"
	"github.com/poiesic/filmdex/ai/openai"
	"github.com/poiesic/filmdex/bot"
	"github.com/poiesic/filmdex/channel/telegram"
	"github.com/poiesic/filmdex/metadata"
	"github.com/poiesic/filmdex/reembed"
	"github.com/poiesic/filmdex/storage/badger"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
)

func main() {
	// Deployment settings live in .env; load it before the CLI resolves
	// the EnvVars bindings below.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "filmdex",
		Usage: "Movie catalog and semantic search for a Telegram channel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the bot front end and scheduled channel ingestion",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "movies.db",
						EnvVars: []string{"DATABASE_FILE"},
					},
					&cli.StringFlag{
						Name:     "telegram-token",
						Usage:    "Telegram bot API token",
						Required: true,
						EnvVars:  []string{"TELEGRAM_BOT_TOKEN"},
					},
					&cli.Int64Flag{
						Name:     "channel-id",
						Usage:    "Numeric chat ID of the channel to ingest",
						Required: true,
						EnvVars:  []string{"CHANNEL_CHAT_ID"},
					},
					&cli.StringFlag{
						Name:     "omdb-api-key",
						Usage:    "OMDb API key for metadata lookups",
						Required: true,
						EnvVars:  []string{"OMDB_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "channel-link",
						Usage:   "Public channel link shown by /start",
						EnvVars: []string{"CHANNEL_LINK"},
					},
					&cli.IntFlag{
						Name:    "job-interval",
						Usage:   "Seconds between ingestion cycles",
						Value:   1800,
						EnvVars: []string{"JOB_INTERVAL"},
					},
					&cli.IntFlag{
						Name:  "find-limit",
						Usage: "Maximum matches offered by /find",
						Value: 5,
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "embeddinggemma",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Run one ingestion cycle against the channel and exit",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "movies.db",
						EnvVars: []string{"DATABASE_FILE"},
					},
					&cli.StringFlag{
						Name:     "telegram-token",
						Usage:    "Telegram bot API token",
						Required: true,
						EnvVars:  []string{"TELEGRAM_BOT_TOKEN"},
					},
					&cli.Int64Flag{
						Name:     "channel-id",
						Usage:    "Numeric chat ID of the channel to ingest",
						Required: true,
						EnvVars:  []string{"CHANNEL_CHAT_ID"},
					},
					&cli.StringFlag{
						Name:     "omdb-api-key",
						Usage:    "OMDb API key for metadata lookups",
						Required: true,
						EnvVars:  []string{"OMDB_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "embeddinggemma",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Print the catalog entry best matching a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "movies.db",
						EnvVars: []string{"DATABASE_FILE"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "embeddinggemma",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
				},
			},
			{
				Name:   "list",
				Usage:  "Print every catalog entry",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "movies.db",
						EnvVars: []string{"DATABASE_FILE"},
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all catalog entries with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "movies.db",
						EnvVars: []string{"DATABASE_FILE"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						Value:   "embeddinggemma",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := c.Int("job-interval")
	if interval <= 0 {
		return fmt.Errorf("job-interval must be greater than 0")
	}

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Open database
	db, err := filmdex.NewDatabase(c.String("db"), filmdex.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	api, err := tgbotapi.NewBotAPI(c.String("telegram-token"))
	if err != nil {
		return fmt.Errorf("failed to authorize with Telegram: %w", err)
	}

	// The channel reader and the bot front end share one API connection.
	client := telegram.NewClientWithAPI(api, c.Int64("channel-id"))
	resolver := metadata.NewOMDbResolver(c.String("omdb-api-key"))

	pipeline, err := db.NewIngestionPipeline(client, resolver)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	matcher, err := db.NewMatcher()
	if err != nil {
		return fmt.Errorf("failed to create matcher: %w", err)
	}

	botOpts := []bot.Option{bot.WithFindLimit(c.Int("find-limit"))}
	if link := c.String("channel-link"); link != "" {
		botOpts = append(botOpts, bot.WithChannelLink(link))
	}

	frontend, err := bot.New(api, db.CatalogRepository(), matcher, pipeline, botOpts...)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// Schedule ingestion cycles. RunCycle refuses to overlap itself, and
	// SkipIfStillRunning keeps the scheduler from even spawning the extra
	// invocation when a cycle outlives the interval.
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{slog.Default()})))
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %ds", interval), func() {
		if err := pipeline.RunCycle(ctx); err != nil {
			slog.Error("ingestion cycle failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule ingestion: %w", err)
	}
	scheduler.Start()

	slog.Info("filmdex serving",
		"database", c.String("db"),
		"channel", c.Int64("channel-id"),
		"interval", interval)

	err = frontend.Run(ctx)

	// Let an in-flight ingestion cycle drain before the deferred close
	// tears down the database underneath it.
	<-scheduler.Stop().Done()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped: %w", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Open database
	db, err := filmdex.NewDatabase(c.String("db"), filmdex.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	client, err := telegram.NewClient(c.String("telegram-token"), c.Int64("channel-id"))
	if err != nil {
		return fmt.Errorf("failed to authorize with Telegram: %w", err)
	}
	resolver := metadata.NewOMDbResolver(c.String("omdb-api-key"))

	pipeline, err := db.NewIngestionPipeline(client, resolver)
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Channel: %d\n", c.Int64("channel-id"))
	fmt.Fprintln(os.Stderr)

	if err := pipeline.RunCycle(ctx); err != nil {
		return fmt.Errorf("ingestion cycle failed: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Ingestion cycle complete.")
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Open database
	db, err := filmdex.NewDatabase(c.String("db"), filmdex.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	matcher, err := db.NewMatcher()
	if err != nil {
		return fmt.Errorf("failed to create matcher: %w", err)
	}

	result, err := matcher.BestMatch(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if result == nil {
		fmt.Printf("No match found for %q\n", query)
		return nil
	}

	fmt.Printf("'%s' (%d)[%0.3f]\n", result.Entry.CanonicalKey, result.Entry.Id, result.Score)
	fmt.Println(result.Entry.Description)
	fmt.Printf("file: %s\n", result.Entry.FileHandle)
	return nil
}

func listCommand(c *cli.Context) error {
	ctx := context.Background()

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewCatalogRepository(backend)
	defer repo.Close()

	entries, err := repo.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CanonicalKey < entries[j].CanonicalKey
	})

	fmt.Printf("Found %d entries\n", len(entries))
	for _, entry := range entries {
		fmt.Printf("'%s' (%d) %s\n", entry.CanonicalKey, entry.Id, entry.FileHandle)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo := badger.NewCatalogRepository(backend)
	defer repo.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Create embedder
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Create reembedding config
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	// Create reembedder
	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	// Run reembedding
	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// cronLogger adapts slog to the scheduler's logging interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}
