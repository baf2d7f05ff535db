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


package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/ingestion"
)

// Telegram hard limits: 4096 runes per message text, 1024 per media caption.
const (
	maxMessageLength = 4096
	maxCaptionLength = 1024
	maxButtonLabel   = 64
)

const startText = "Welcome! Use /find <movie name> to search for movies."

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "find":
		b.handleFind(ctx, msg)
	case "list":
		b.handleList(ctx, msg)
	case "ingest":
		b.handleIngest(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Use /find <movie name> to search the catalog.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	text := startText
	if b.channelLink != "" {
		text += "\nChannel: " + b.channelLink
	}
	b.reply(msg.Chat.ID, text)
}

// handleFind renders the top matches as an inline keyboard. The callback
// data carries the entry id, so delivery survives catalog growth between
// the query and the button press.
func (b *Bot) handleFind(ctx context.Context, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		b.reply(msg.Chat.ID, "Usage: /find <movie name>")
		return
	}

	results, err := b.matcher.TopMatches(ctx, query, b.findLimit)
	if err != nil {
		b.logger.Error("match failed", "query", query, "error", err)
		b.reply(msg.Chat.ID, "Search failed. Try again later.")
		return
	}
	if len(results) == 0 {
		b.reply(msg.Chat.ID, fmt.Sprintf("No match found for %q.", query))
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(results))
	for _, result := range results {
		label := result.Entry.CanonicalKey
		if label == "" {
			label = "(untitled)"
		}
		data := strconv.FormatUint(uint64(result.Entry.Id), 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(truncate(label, maxButtonLabel), data),
		))
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, "Select a movie:")
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("send failed", "chatID", msg.Chat.ID, "error", err)
	}
}

// handleCallback delivers the file behind a pressed keyboard button.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Ack first so the client stops its spinner even if delivery fails
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("callback ack failed", "error", err)
	}

	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	id, err := strconv.ParseUint(query.Data, 10, 64)
	if err != nil {
		b.logger.Warn("malformed callback data", "data", query.Data)
		return
	}

	entry, err := b.catalogRepository.GetEntry(ctx, core.ID(id))
	if err != nil {
		b.logger.Error("entry lookup failed", "id", id, "error", err)
		b.reply(chatID, "That movie is no longer in the catalog.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(entry.FileHandle))
	doc.Caption = truncate(entry.Description, maxCaptionLength)
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("file delivery failed", "id", id, "error", err)
		b.reply(chatID, "Could not deliver the file. Try again later.")
	}
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message) {
	entries, err := b.catalogRepository.ListEntries(ctx)
	if err != nil {
		b.logger.Error("catalog listing failed", "error", err)
		b.reply(msg.Chat.ID, "Could not read the catalog. Try again later.")
		return
	}
	if len(entries) == 0 {
		b.reply(msg.Chat.ID, "The catalog is empty.")
		return
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		key := entry.CanonicalKey
		if key == "" {
			key = "(untitled)"
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, chunk := range chunkLines(keys, maxMessageLength) {
		b.reply(msg.Chat.ID, chunk)
	}
}

func (b *Bot) handleIngest(ctx context.Context, msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID, "Ingestion cycle started.")

	if err := b.runner.RunCycle(ctx); err != nil {
		if errors.Is(err, ingestion.ErrCycleInProgress) {
			b.reply(msg.Chat.ID, "An ingestion cycle is already running.")
			return
		}
		b.logger.Error("ingestion cycle failed", "error", err)
		b.reply(msg.Chat.ID, "Ingestion cycle failed: "+err.Error())
		return
	}

	b.reply(msg.Chat.ID, "Ingestion cycle complete.")
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("send failed", "chatID", chatID, "error", err)
	}
}

// chunkLines joins lines into newline-separated blocks no longer than
// limit bytes each. Single lines over the limit are truncated.
func chunkLines(lines []string, limit int) []string {
	var chunks []string
	var sb strings.Builder

	for _, line := range lines {
		if sb.Len() > 0 && sb.Len()+len(line)+1 > limit {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(truncate(line, limit))
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}

	return chunks
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max-3] + "..."
}
