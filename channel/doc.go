// Package channel defines the message-stream abstraction the ingestion
// pipeline consumes.
//
// A channel is an ordered, append-only stream of posts, each with a stream
// position, an optional caption, and an optional file attachment. The Client
// interface exposes the stream through a single since-position fetch, which
// pairs with the durable ingestion cursor to make consumption resumable
// across process restarts.
//
// The package also defines the error conditions a provider can surface:
// rate limiting (RateLimitError), duplicate consumers (ErrConflict), and
// rejected credentials (ErrUnauthorized). Callers use these to decide
// whether a fetch failure is transient or needs operator attention.
//
// The channel/telegram sub-package provides the production implementation
// over the Telegram Bot API.
package channel
