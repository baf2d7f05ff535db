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


package core

import "fmt"

// ValidateEntry validates a CatalogEntry according to domain rules.
//
// Validation rules:
//   - FileHandle must not be empty (entries exist only for file postings)
//
// NOT validated:
//   - CanonicalKey (empty keys are accepted; the normalizer can legitimately
//     produce "" for punctuation-only captions)
//   - Description (sentinel values are valid descriptions)
//   - Id (0 is valid; the store derives it from the canonical key)
func ValidateEntry(entry *CatalogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.FileHandle == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyFileHandle)
	}

	return nil
}

// ValidateCursor validates a Cursor according to domain rules.
//
// Validation rules:
//   - Consumer must not be empty
//   - LastConsumedID must not be negative
func ValidateCursor(cursor *Cursor) error {
	if cursor == nil {
		return fmt.Errorf("%w: cursor is nil", ErrInvalidCursor)
	}

	if cursor.Consumer == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCursor, ErrEmptyConsumer)
	}

	if cursor.LastConsumedID < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCursor, ErrNegativeCursor)
	}

	return nil
}
