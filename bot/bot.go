package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/storage"
)

const (
	// DefaultFindLimit is the number of matches offered per /find query.
	DefaultFindLimit = 5

	// defaultPollTimeout is the long-poll timeout in seconds for the
	// update stream.
	defaultPollTimeout = 60
)

// API is the slice of the Telegram Bot API the bot depends on.
// *tgbotapi.BotAPI satisfies it.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Matcher resolves free-text queries to ranked catalog matches.
// *match.Matcher satisfies it.
type Matcher interface {
	TopMatches(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error)
}

// CycleRunner triggers an ingestion cycle on demand.
// *ingestion.Pipeline satisfies it.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// Bot serves catalog commands over Telegram: searching, listing, file
// delivery through inline keyboard callbacks, and on-demand ingestion.
type Bot struct {
	api               API
	catalogRepository storage.CatalogRepository
	matcher           Matcher
	runner            CycleRunner
	channelLink       string
	findLimit         int
	pollTimeout       int
	logger            *slog.Logger
}

// Option is a functional option for configuring a Bot.
type Option func(*Bot)

// WithChannelLink sets a public channel link advertised in the /start reply.
func WithChannelLink(link string) Option {
	return func(b *Bot) {
		b.channelLink = link
	}
}

// WithFindLimit sets how many matches a /find query offers. Values below
// one fall back to a single match.
func WithFindLimit(limit int) Option {
	return func(b *Bot) {
		if limit < 1 {
			limit = 1
		}
		b.findLimit = limit
	}
}

// WithPollTimeout sets the long-poll timeout in seconds for update fetches.
func WithPollTimeout(seconds int) Option {
	return func(b *Bot) {
		b.pollTimeout = seconds
	}
}

// WithLogger sets the logger used by the bot.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger.With("component", "bot")
	}
}

// New creates a Bot serving the given catalog.
func New(api API, catalogRepository storage.CatalogRepository, matcher Matcher, runner CycleRunner, opts ...Option) (*Bot, error) {
	if api == nil {
		return nil, ErrAPIRequired
	}
	if catalogRepository == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if matcher == nil {
		return nil, ErrMatcherRequired
	}
	if runner == nil {
		return nil, ErrCycleRunnerRequired
	}

	b := &Bot{
		api:               api,
		catalogRepository: catalogRepository,
		matcher:           matcher,
		runner:            runner,
		findLimit:         DefaultFindLimit,
		pollTimeout:       defaultPollTimeout,
		logger:            slog.Default().With("component", "bot"),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Run starts the dispatch loop and blocks until ctx is done or the update
// stream closes. Each update is handled on its own goroutine so a slow
// handler never stalls the stream.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("bot dispatch loop started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.dispatch(ctx, update)
		}
	}
}

// dispatch routes one update to its handler. Handler failures are logged
// inside the handlers; nothing escapes to crash the loop.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}
