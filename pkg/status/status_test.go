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
	"fmt"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeUnknown, "unknown"},
		{OutcomeSkipped, "skipped"},
		{OutcomeFiltered, "filtered"},
		{OutcomeDryRun, "dry run"},
		{OutcomeRenamed, "renamed"},
		{OutcomeFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.String())
		})
	}
}

func TestTracker(t *testing.T) {
	ctx := testContext(t)
	tracker := New()

	tracker.Track(ctx, Result{Key: "b", Target: "B", Outcome: OutcomeRenamed})
	tracker.Track(ctx, Result{Key: "a", Outcome: OutcomeSkipped})
	tracker.Track(ctx, Result{Key: "c", Target: "C", Outcome: OutcomeFailed, Err: errors.New("access denied")})

	results := tracker.Results()
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{results[0].Key, results[1].Key, results[2].Key})

	counts := tracker.Counts()
	assert.Equal(t, 1, counts[OutcomeRenamed])
	assert.Equal(t, 1, counts[OutcomeSkipped])
	assert.Equal(t, 1, counts[OutcomeFailed])
	assert.Equal(t, 0, counts[OutcomeDryRun])

	failed := tracker.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "c", failed[0].Key)
	assert.EqualError(t, failed[0].Err, "access denied")

	got, err := tracker.Get("b")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRenamed, got.Outcome)

	_, err = tracker.Get("missing")
	assert.Error(t, err)
}

func TestTrackerReplacesResult(t *testing.T) {
	ctx := testContext(t)
	tracker := New()

	tracker.Track(ctx, Result{Key: "k", Outcome: OutcomeFailed, Err: errors.New("first")})
	tracker.Track(ctx, Result{Key: "k", Target: "K", Outcome: OutcomeRenamed})

	assert.Equal(t, map[Outcome]int{OutcomeRenamed: 1}, tracker.Counts())
}

func TestTrackerConcurrent(t *testing.T) {
	ctx := testContext(t)
	tracker := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tracker.Track(ctx, Result{Key: fmt.Sprintf("key-%02d", i), Outcome: OutcomeRenamed})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, tracker.Counts()[OutcomeRenamed])
}

func TestSummary(t *testing.T) {
	color.NoColor = true
	pterm.DisableStyling()
	defer func() {
		color.NoColor = false
		pterm.EnableStyling()
	}()

	t.Run("counts_only", func(t *testing.T) {
		ctx := testContext(t)
		tracker := New()
		tracker.Track(ctx, Result{Key: "a", Target: "A", Outcome: OutcomeRenamed})
		tracker.Track(ctx, Result{Key: "b", Target: "B", Outcome: OutcomeRenamed})
		tracker.Track(ctx, Result{Key: "c", Outcome: OutcomeSkipped})

		out, err := tracker.Summary()
		require.NoError(t, err)
		assert.Contains(t, out, "Outcome")
		assert.Contains(t, out, "✓ renamed")
		assert.Contains(t, out, "2")
		assert.Contains(t, out, "- skipped")
		assert.NotContains(t, out, "failed")
		assert.NotContains(t, out, "Error")
	})

	t.Run("with_failures", func(t *testing.T) {
		ctx := testContext(t)
		tracker := New()
		tracker.Track(ctx, Result{Key: "bad/key", Target: "bad/KEY", Outcome: OutcomeFailed, Err: errors.New("copy refused")})

		out, err := tracker.Summary()
		require.NoError(t, err)
		assert.Contains(t, out, "✗ failed")
		assert.Contains(t, out, "bad/key")
		assert.Contains(t, out, "copy refused")
	})

	t.Run("empty", func(t *testing.T) {
		out, err := New().Summary()
		require.NoError(t, err)
		assert.Contains(t, out, "- unknown")
	})
}
