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


package storage

import (
	"github.com/poiesic/filmdex/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalEntry serializes a CatalogEntry to bytes.
func MarshalEntry(entry *core.CatalogEntry) []byte {
	buf := make([]byte, core.CatalogEntryMUS.Size(*entry))
	core.CatalogEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalEntry deserializes a CatalogEntry from bytes.
func UnmarshalEntry(data []byte) (*core.CatalogEntry, error) {
	entry, _, err := core.CatalogEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalCursor serializes a Cursor to bytes.
func MarshalCursor(cursor *core.Cursor) []byte {
	buf := make([]byte, core.CursorMUS.Size(*cursor))
	core.CursorMUS.Marshal(*cursor, buf)
	return buf
}

// UnmarshalCursor deserializes a Cursor from bytes.
func UnmarshalCursor(data []byte) (*core.Cursor, error) {
	cursor, _, err := core.CursorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &cursor, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, core.VectorMUS.Size(vector))
	core.VectorMUS.Marshal(vector, buf)
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	vector, _, err := core.VectorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return vector, nil
}
