package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStart(t *testing.T) {
	bot, api, _, _, _ := newTestBot(t)

	bot.dispatch(context.Background(), commandUpdate(1, "start", ""))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "/find")
	assert.NotContains(t, texts[0], "Channel:")
}

func TestHandleStart_WithChannelLink(t *testing.T) {
	bot, api, _, _, _ := newTestBot(t, WithChannelLink("https://t.me/movies"))

	bot.dispatch(context.Background(), commandUpdate(1, "start", ""))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Channel: https://t.me/movies")
}

func TestHandleFind_RendersKeyboard(t *testing.T) {
	bot, api, _, matcher, _ := newTestBot(t)

	matcher.results = []*core.SearchResult{
		{Entry: &core.CatalogEntry{Id: 42, CanonicalKey: "Dune (2021)"}, Score: 0.97},
		{Entry: &core.CatalogEntry{Id: 43, CanonicalKey: "Dune (1984)"}, Score: 0.91},
	}

	bot.dispatch(context.Background(), commandUpdate(1, "find", "dune"))

	require.Equal(t, []string{"dune"}, matcher.queries)

	sent := api.sentItems()
	require.Len(t, sent, 1)
	mc, ok := sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok, "should send a message")
	assert.Equal(t, testChatID, mc.ChatID)
	assert.Equal(t, "Select a movie:", mc.Text)

	markup, ok := mc.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "should attach an inline keyboard")
	require.Len(t, markup.InlineKeyboard, 2)

	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Dune (2021)", first.Text)
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, "42", *first.CallbackData)

	second := markup.InlineKeyboard[1][0]
	assert.Equal(t, "Dune (1984)", second.Text)
	require.NotNil(t, second.CallbackData)
	assert.Equal(t, "43", *second.CallbackData)
}

func TestHandleFind_WithoutQuery(t *testing.T) {
	bot, api, _, matcher, _ := newTestBot(t)

	bot.dispatch(context.Background(), commandUpdate(1, "find", ""))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Usage:")
	assert.Empty(t, matcher.queries, "matcher should not be queried")
}

func TestHandleFind_NoMatch(t *testing.T) {
	bot, api, _, _, _ := newTestBot(t)

	bot.dispatch(context.Background(), commandUpdate(1, "find", "unheard of film"))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "No match found")
}

func TestHandleFind_MatcherError(t *testing.T) {
	bot, api, _, matcher, _ := newTestBot(t)
	matcher.err = errors.New("embedding service down")

	bot.dispatch(context.Background(), commandUpdate(1, "find", "dune"))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Search failed")
}

func TestHandleCallback_DeliversFile(t *testing.T) {
	bot, api, catalogRepo, _, _ := newTestBot(t)

	ctx := context.Background()
	added, err := catalogRepo.AddEntries(ctx, &core.CatalogEntry{
		CanonicalKey: "Blade Runner (1982)",
		Description:  "Title: Blade Runner\nYear: 1982",
		FileHandle:   "file-blade-runner",
	})
	require.NoError(t, err)
	require.Len(t, added, 1)

	data := strconv.FormatUint(uint64(added[0].Id), 10)
	bot.dispatch(ctx, callbackUpdate(2, data))

	// Button press is acked
	requests := api.requestItems()
	require.Len(t, requests, 1)
	cb, ok := requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "callback-1", cb.CallbackQueryID)

	// File goes out by its stored handle with the description as caption
	sent := api.sentItems()
	require.Len(t, sent, 1)
	doc, ok := sent[0].(tgbotapi.DocumentConfig)
	require.True(t, ok, "should send a document")
	assert.Equal(t, tgbotapi.FileID("file-blade-runner"), doc.File)
	assert.Equal(t, "Title: Blade Runner\nYear: 1982", doc.Caption)
}

func TestHandleCallback_UnknownEntry(t *testing.T) {
	bot, api, _, _, _ := newTestBot(t)

	bot.dispatch(context.Background(), callbackUpdate(2, "12345"))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "no longer in the catalog")
}

func TestHandleCallback_MalformedData(t *testing.T) {
	bot, api, _, _, _ := newTestBot(t)

	bot.dispatch(context.Background(), callbackUpdate(2, "not-a-number"))

	assert.Len(t, api.requestItems(), 1, "press should still be acked")
	assert.Empty(t, api.sentItems(), "nothing should be sent")
}

func TestHandleList(t *testing.T) {
	bot, api, catalogRepo, _, _ := newTestBot(t)

	ctx := context.Background()
	_, err := catalogRepo.AddEntries(ctx,
		&core.CatalogEntry{CanonicalKey: "Heat (1995)", Description: "crime", FileHandle: "f1"},
		&core.CatalogEntry{CanonicalKey: "Alien (1979)", Description: "horror", FileHandle: "f2"},
	)
	require.NoError(t, err)

	bot.dispatch(ctx, commandUpdate(1, "list", ""))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Equal(t, "Alien (1979)\nHeat (1995)", texts[0], "keys should be sorted")
}

func TestHandleList_EmptyCatalog(t *testing.T) {
	bot, api, _, _, _ := newTestBot(t)

	bot.dispatch(context.Background(), commandUpdate(1, "list", ""))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "empty")
}

func TestHandleIngest(t *testing.T) {
	bot, api, _, _, runner := newTestBot(t)

	bot.dispatch(context.Background(), commandUpdate(1, "ingest", ""))

	assert.Equal(t, 1, runner.runs)
	texts := api.sentTexts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "started")
	assert.Contains(t, texts[1], "complete")
}

func TestHandleIngest_CycleInProgress(t *testing.T) {
	bot, api, _, _, runner := newTestBot(t)
	runner.err = ingestion.ErrCycleInProgress

	bot.dispatch(context.Background(), commandUpdate(1, "ingest", ""))

	texts := api.sentTexts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "already running")
}

func TestHandleIngest_Failure(t *testing.T) {
	bot, api, _, _, runner := newTestBot(t)
	runner.err = errors.New("channel unreachable")

	bot.dispatch(context.Background(), commandUpdate(1, "ingest", ""))

	texts := api.sentTexts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "failed")
	assert.Contains(t, texts[1], "channel unreachable")
}

func TestUnknownCommand(t *testing.T) {
	bot, api, _, _, _ := newTestBot(t)

	bot.dispatch(context.Background(), commandUpdate(1, "frobnicate", ""))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Unknown command")
}

func TestChunkLines(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		limit    int
		expected []string
	}{
		{
			name:     "all lines fit one chunk",
			lines:    []string{"aa", "bb", "cc"},
			limit:    20,
			expected: []string{"aa\nbb\ncc"},
		},
		{
			name:     "split at limit",
			lines:    []string{"aaaa", "bbbb", "cccc"},
			limit:    9,
			expected: []string{"aaaa\nbbbb", "cccc"},
		},
		{
			name:     "empty input",
			lines:    nil,
			limit:    10,
			expected: nil,
		},
		{
			name:     "single line per chunk",
			lines:    []string{"aaaa", "bbbb"},
			limit:    4,
			expected: []string{"aaaa", "bbbb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chunkLines(tt.lines, tt.limit))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))

	long := truncate(strings.Repeat("x", 100), 10)
	assert.Len(t, long, 10)
	assert.True(t, strings.HasSuffix(long, "..."))
}
