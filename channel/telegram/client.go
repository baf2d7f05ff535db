// Package telegram implements the channel.Client interface over the
// Telegram Bot API.
package telegram

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/poiesic/filmdex/channel"
)

// Client fetches posts from a Telegram channel through the bot update stream.
type Client struct {
	api       *tgbotapi.BotAPI
	channelID int64
	timeout   int
	logger    *slog.Logger
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithPollTimeout sets the long-poll timeout in seconds for update fetches.
// Zero (the default) makes each fetch return immediately.
func WithPollTimeout(seconds int) Option {
	return func(c *Client) {
		c.timeout = seconds
	}
}

// WithLogger sets the logger used by the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "telegram-channel")
	}
}

// NewClient creates a Telegram-backed channel client with its own Bot API
// connection. channelID restricts which chat's posts are cataloged; zero
// accepts posts from any chat on the stream.
func NewClient(token string, channelID int64, opts ...Option) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", channel.ErrUnauthorized, err)
	}
	return NewClientWithAPI(api, channelID, opts...), nil
}

// NewClientWithAPI wraps an existing Bot API handle. Use this when the
// command bot and the ingestion client share one connection.
func NewClientWithAPI(api *tgbotapi.BotAPI, channelID int64, opts ...Option) *Client {
	c := &Client{
		api:       api,
		channelID: channelID,
		logger:    slog.Default().With("component", "telegram-channel"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMessages fetches updates with identifiers strictly greater than since
// and returns them in ascending identifier order. Every update on the stream
// yields a message so the caller's cursor can advance past it; only posts
// from the configured chat carry a caption and file handle.
func (c *Client) GetMessages(ctx context.Context, since int64) ([]channel.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := tgbotapi.NewUpdate(int(since) + 1)
	cfg.Timeout = c.timeout

	c.logger.Debug("fetching channel updates", "since", since)

	updates, err := c.api.GetUpdates(cfg)
	if err != nil {
		return nil, classifyError(err)
	}

	messages := make([]channel.Message, 0, len(updates))
	for _, update := range updates {
		messages = append(messages, toMessage(update, c.channelID))
	}

	slices.SortFunc(messages, func(a, b channel.Message) int {
		return cmp.Compare(a.ID, b.ID)
	})

	c.logger.Debug("fetched channel updates", "count", len(messages))
	return messages, nil
}

// toMessage converts one Telegram update into a stream message. Updates that
// are not media posts from the wanted chat still map to a position-only
// message, keeping the stream gap-free for cursor advancement.
func toMessage(update tgbotapi.Update, channelID int64) channel.Message {
	msg := channel.Message{ID: int64(update.UpdateID)}

	post := update.ChannelPost
	if post == nil {
		post = update.Message
	}
	if post == nil {
		return msg
	}
	if channelID != 0 && (post.Chat == nil || post.Chat.ID != channelID) {
		return msg
	}

	msg.Caption = post.Caption
	msg.FileHandle = attachmentHandle(post)
	return msg
}

// attachmentHandle extracts the file identifier from a media post.
func attachmentHandle(post *tgbotapi.Message) string {
	switch {
	case post.Document != nil:
		return post.Document.FileID
	case post.Video != nil:
		return post.Video.FileID
	case post.Audio != nil:
		return post.Audio.FileID
	}
	return ""
}

// classifyError maps Telegram API failures onto the channel error taxonomy.
func classifyError(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case 401, 403:
		return fmt.Errorf("%w: %s", channel.ErrUnauthorized, apiErr.Message)
	case 409:
		return fmt.Errorf("%w: %s", channel.ErrConflict, apiErr.Message)
	case 429:
		retryAfter := time.Duration(apiErr.RetryAfter) * time.Second
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		return &channel.RateLimitError{RetryAfter: retryAfter}
	}
	return err
}
