package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated by content-based hashing so that identical canonical
// keys always map to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Description sentinels stored when the metadata lookup cannot supply text.
// The two values are distinct so a future sweep can tell "confirmed absent
// upstream" apart from "lookup failed, worth retrying".
const (
	// DescriptionNotAvailable means the lookup succeeded but found nothing.
	DescriptionNotAvailable = "Movie details not available."

	// DescriptionLookupFailed means the lookup failed at the transport level
	// (timeout, DNS, non-2xx response).
	DescriptionLookupFailed = "Error fetching movie details."
)

// CatalogEntry represents a single media item discovered in the channel.
// Entries are created exactly once, never updated in place, and never
// deleted by this module.
type CatalogEntry struct {
	Id           ID
	CanonicalKey string // Normalized title, unique across the catalog
	Description  string // Caption text or resolver-fetched summary
	FileHandle   string // Opaque reference to the file in the source system
	InsertedAt   time.Time
}

// EmbeddingText returns the text an entry is embedded under for semantic
// matching. Sentinel and empty descriptions carry no semantic signal, so
// the canonical key stands in for them.
func (e *CatalogEntry) EmbeddingText() string {
	switch e.Description {
	case "", DescriptionNotAvailable, DescriptionLookupFailed:
		return e.CanonicalKey
	}
	return e.Description
}

// Cursor marks the last consumed position in a channel's message stream.
// One cursor exists per consumer name; it is read at the start of each
// ingestion cycle and advanced once per consumed message.
type Cursor struct {
	Consumer       string
	LastConsumedID int64
	UpdatedAt      time.Time
}

// SearchResult represents a catalog match with its similarity score.
type SearchResult struct {
	Entry *CatalogEntry
	Score float32
}
