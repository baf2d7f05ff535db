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


// Package bot implements the Telegram command front end for the catalog.
//
// The bot long-polls the update stream and dispatches commands: /start
// prints help, /find answers a free-text query with an inline keyboard of
// matches, a keyboard callback delivers the stored file by its Telegram
// file id, /list prints the catalog keys, and /ingest triggers an
// immediate ingestion cycle. Handler failures are logged and answered in
// chat; they never take the dispatch loop down.
package bot
