// Copyright 2025 walteh LLC
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

package status

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome is the terminal state of a key
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSkipped         // Key did not change
	OutcomeFiltered        // Key excluded by include/exclude globs
	OutcomeDryRun          // Rename announced, nothing performed
	OutcomeRenamed         // Copy succeeded and the source delete was scheduled
	OutcomeFailed          // Resolve or copy failed, source untouched
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFiltered:
		return "filtered"
	case OutcomeDryRun:
		return "dry run"
	case OutcomeRenamed:
		return "renamed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 Result is what happened to one key
type Result struct {
	Key     string  // Source key
	Target  string  // Target key, empty when skipped or filtered
	Outcome Outcome // Terminal state
	Err     error   // Set when Outcome is OutcomeFailed
}

// 📈 Reporter receives one result per listed key
type Reporter interface {
	Track(ctx context.Context, result Result)
}

// 🔧 Tracker records results in memory
type Tracker struct {
	mu      sync.RWMutex
	results map[string]Result
}

var _ Reporter = (*Tracker)(nil)

// 🏭 New creates an empty tracker
func New() *Tracker {
	return &Tracker{
		results: make(map[string]Result),
	}
}

// Track records result, replacing any earlier result for the same key
func (t *Tracker) Track(ctx context.Context, result Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.results[result.Key] = result

	ev := zerolog.Ctx(ctx).Debug()
	if result.Outcome == OutcomeFailed {
		ev = zerolog.Ctx(ctx).Warn().Err(result.Err)
	}
	ev.Str("key", result.Key).
		Str("target", result.Target).
		Stringer("outcome", result.Outcome).
		Msg("key finished")
}

// Get returns the result recorded for key
func (t *Tracker) Get(key string) (Result, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.results[key]
	if !ok {
		return Result{}, errors.Errorf("key not tracked: %s", key)
	}
	return r, nil
}

// Results returns every result sorted by key
func (t *Tracker) Results() []Result {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Result, 0, len(t.results))
	for _, r := range t.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Counts returns how many keys ended in each outcome
func (t *Tracker) Counts() map[Outcome]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[Outcome]int)
	for _, r := range t.results {
		counts[r.Outcome]++
	}
	return counts
}

// Failed returns the failed results sorted by key
func (t *Tracker) Failed() []Result {
	var out []Result
	for _, r := range t.Results() {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}
