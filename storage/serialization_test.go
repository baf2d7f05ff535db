package storage

import (
	"testing"
	"time"

	"github.com/poiesic/filmdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("The Matrix (1999)")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalEntry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		entry *core.CatalogEntry
	}{
		{
			name: "entry with caption description",
			entry: &core.CatalogEntry{
				Id:           core.IDFromContent("The Matrix (1999)"),
				CanonicalKey: "The Matrix (1999)",
				Description:  "A hacker discovers reality is a simulation.",
				FileHandle:   "BAADBAADrwADBREAAYag",
				InsertedAt:   now,
			},
		},
		{
			name: "entry with sentinel description",
			entry: &core.CatalogEntry{
				Id:           core.IDFromContent("Unknown Film (2020)"),
				CanonicalKey: "Unknown Film (2020)",
				Description:  core.DescriptionLookupFailed,
				FileHandle:   "BAADBAAD",
				InsertedAt:   now,
			},
		},
		{
			name: "entry with empty canonical key",
			entry: &core.CatalogEntry{
				Id:           core.IDFromContent(""),
				CanonicalKey: "",
				Description:  core.DescriptionNotAvailable,
				FileHandle:   "BAADBAAD",
				InsertedAt:   now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalEntry(tt.entry)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalEntry(data)
			require.NoError(t, err)
			assert.Equal(t, tt.entry, decoded)
		})
	}
}

func TestUnmarshalEntry_Truncated(t *testing.T) {
	entry := &core.CatalogEntry{
		Id:           core.ID(7),
		CanonicalKey: "The Matrix (1999)",
		Description:  "desc",
		FileHandle:   "BAADBAAD",
		InsertedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	data := MarshalEntry(entry)

	_, err := UnmarshalEntry(data[:len(data)/2])
	assert.Error(t, err)
}

func TestMarshalUnmarshalCursor(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	cursor := &core.Cursor{
		Consumer:       "channel-ingest",
		LastConsumedID: 987654321,
		UpdatedAt:      now,
	}

	data := MarshalCursor(cursor)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCursor(data)
	require.NoError(t, err)
	assert.Equal(t, cursor, decoded)
}

func TestMarshalUnmarshalVector(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"empty vector", []float32{}},
		{"small vector", []float32{0.1, -0.2, 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalVector(tt.vector)
			decoded, err := UnmarshalVector(data)
			require.NoError(t, err)
			assert.Equal(t, tt.vector, decoded)
		})
	}
}

func TestUnmarshalVector_Malformed(t *testing.T) {
	data := MarshalVector([]float32{0.5, 0.5, 0.5, 0.5})

	_, err := UnmarshalVector(data[:3])
	assert.Error(t, err)
}
