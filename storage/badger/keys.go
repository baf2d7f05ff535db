package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/storage"
)

// Key prefixes for different data types
const (
	entryPrefix  = "catrec"
	vectorPrefix = "catvec"
	cursorPrefix = "cursor"
)

// makeEntryKey generates a key for a catalog entry by ID.
func makeEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entryPrefix, id))
}

// makeVectorKey generates a vector index key for an entry ID.
// Format: prefix:id with the ID in BigEndian so keys sort numerically.
func makeVectorKey(id core.ID) []byte {
	prefix := vectorPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// idFromVectorKey recovers the entry ID from a vector index key.
func idFromVectorKey(key []byte) (core.ID, error) {
	prefixLen := len(vectorPrefix) + 1
	if len(key) != prefixLen+8 {
		return 0, storage.ErrTruncatedData
	}
	return core.ID(binary.BigEndian.Uint64(key[prefixLen:])), nil
}

// makeCursorKey generates a key for a consumer's ingestion cursor.
func makeCursorKey(consumer string) []byte {
	return []byte(fmt.Sprintf("%s:%s", cursorPrefix, consumer))
}
