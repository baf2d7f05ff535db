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


// Package match resolves free-text queries to catalog entries.
//
// The Matcher type embeds the query with the same model used for catalog
// entries and ranks entries by cosine similarity over the persistent vector
// index. A configurable similarity floor separates "no good match" from a
// poor one: queries with nothing above the floor return no result instead
// of the least-bad entry.
//
// Entries committed without a vector (for example when asynchronous
// indexing lagged or failed) are embedded on demand before each search, so
// the index never permanently trails the catalog.
package match
