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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates a CatalogEntry failed validation.
	ErrInvalidEntry = errors.New("invalid catalog entry")

	// ErrInvalidCursor indicates a Cursor failed validation.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrEmptyFileHandle indicates the FileHandle field is empty.
	ErrEmptyFileHandle = errors.New("file handle cannot be empty")

	// ErrEmptyConsumer indicates the cursor Consumer field is empty.
	ErrEmptyConsumer = errors.New("consumer name cannot be empty")

	// ErrNegativeCursor indicates a cursor position below zero.
	ErrNegativeCursor = errors.New("cursor position cannot be negative")

	// ErrMalformedRecord indicates persisted record bytes that cannot be decoded.
	ErrMalformedRecord = errors.New("malformed record data")
)
