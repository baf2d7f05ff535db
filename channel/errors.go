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


package channel

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConflict indicates another consumer is reading the same stream.
	// The condition is advisory and clears once the other consumer stops.
	ErrConflict = errors.New("another consumer is reading the channel stream")

	// ErrUnauthorized indicates the channel credentials were rejected.
	// This is not self-healing and requires operator intervention.
	ErrUnauthorized = errors.New("channel authorization failed")
)

// RateLimitError indicates the provider throttled the request.
// RetryAfter carries the server-advised wait before the next attempt.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("channel rate limited, retry after %s", e.RetryAfter)
}
