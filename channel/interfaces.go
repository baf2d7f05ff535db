package channel

import "context"

// Message is a single post fetched from the media channel stream.
type Message struct {
	// ID is the monotonically increasing stream position of the post.
	ID int64

	// Caption is the raw caption text attached to the post, possibly empty.
	Caption string

	// FileHandle is the provider's opaque identifier for the attached file,
	// usable later to deliver the file back to a requester. Empty when the
	// post carries no file attachment.
	FileHandle string
}

// Client fetches posts from an ordered, append-only message stream.
// Implementations must be thread-safe for concurrent use.
type Client interface {
	// GetMessages returns all posts with stream positions strictly greater
	// than since, in ascending position order. A since of zero requests the
	// oldest retained posts. Returns a RateLimitError, ErrConflict, or
	// ErrUnauthorized when the provider reports the matching condition.
	GetMessages(ctx context.Context, since int64) ([]Message, error)
}
