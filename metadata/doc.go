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


// Package metadata resolves descriptive text for catalog entries.
//
// A caption supplied with the original post always wins; only captionless
// posts trigger an external lookup, keyed by the entry's canonical key.
// The resolver never returns an error: a lookup that finds nothing yields
// core.DescriptionNotAvailable, and a lookup that fails at the transport
// level yields core.DescriptionLookupFailed. The two sentinels stay distinct
// so a later sweep can tell "confirmed absent" from "worth retrying".
// The resolver itself performs no retries; a failed lookup is permanent for
// that entry unless the message is re-ingested.
//
// The production implementation queries the OMDb HTTP API with a bounded
// timeout and formats successful responses into a fixed five-field summary.
package metadata
