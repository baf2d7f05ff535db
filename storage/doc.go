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


// Package storage provides the storage abstraction layer for filmdex.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - CatalogRepository: the deduplicating catalog and its vector index
//   - CursorRepository: durable per-consumer ingestion cursors
//
// Public constructors return interface types to prevent accidental coupling
// to BadgerDB specifics and to keep backends swappable in tests.
//
// # Uniqueness
//
// The catalog enforces first-write-wins per canonical key: AddEntries
// silently skips entries whose key is already present. Uniqueness is atomic
// per insert, so concurrent readers never observe a duplicate key.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. Catalog reads may run concurrently with
// catalog writes.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
