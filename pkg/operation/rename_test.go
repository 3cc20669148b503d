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

package operation_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walteh/s3rename/pkg/cleanup"
	"github.com/walteh/s3rename/pkg/config"
	"github.com/walteh/s3rename/pkg/log"
	"github.com/walteh/s3rename/pkg/operation"
	"github.com/walteh/s3rename/pkg/status"
	"github.com/walteh/s3rename/pkg/store"
	"github.com/walteh/s3rename/pkg/store/storetest"
	"github.com/walteh/s3rename/pkg/text"
)

// 🧪 createTestEnv builds options for a rename under s3://bkt/prefix
func createTestEnv(t *testing.T, bucket *storetest.Bucket, prefix, expr string) (context.Context, operation.Options, *status.Tracker) {
	t.Helper()

	parsed, err := text.Parse(expr)
	require.NoError(t, err)

	tracker := status.New()
	return testContext(t), operation.Options{
		API:        bucket,
		Location:   config.Location{Bucket: bucket.Name, Prefix: prefix},
		Expression: parsed,
		Pending:    cleanup.NewPending(),
		Reporter:   tracker,
	}, tracker
}

func run(t *testing.T, ctx context.Context, opts operation.Options) error {
	t.Helper()
	op, err := operation.NewRenameOperation(opts)
	require.NoError(t, err)
	return op.Execute(ctx)
}

func TestRenameEndToEnd(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PutKeys("a/b.txt", "a/c.txt", "a/")
	ctx, opts, tracker := createTestEnv(t, bucket, "a/", "s/b/B/")

	require.NoError(t, run(t, ctx, opts))

	copies := bucket.Copies()
	require.Len(t, copies, 1)
	assert.Equal(t, "a/B.txt", aws.ToString(copies[0].Key))
	assert.Equal(t, "bkt/a/b.txt", aws.ToString(copies[0].CopySource))

	assert.Equal(t, []string{"a/b.txt"}, bucket.Deletes())
	assert.Equal(t, []string{"a/", "a/B.txt", "a/c.txt"}, bucket.Keys())
	assert.Equal(t, 0, opts.Pending.Len(), "every delete is drained before Execute returns")

	counts := tracker.Counts()
	assert.Equal(t, 1, counts[status.OutcomeRenamed])
	assert.Equal(t, 1, counts[status.OutcomeSkipped])
	_, err := tracker.Get("a/")
	assert.Error(t, err, "directory markers are never listed")
}

func TestRenameUnchangedKeysNeverMutate(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	for i := 0; i < 25; i++ {
		bucket.PutKeys(fmt.Sprintf("logs/%02d.log", i))
	}
	bucket.PageSize = 10
	ctx, opts, tracker := createTestEnv(t, bucket, "logs/", "s/nomatch/x/g")

	require.NoError(t, run(t, ctx, opts))

	assert.Equal(t, 0, bucket.MutatingCalls())
	assert.Equal(t, 0, bucket.Calls(storetest.OpHead))
	assert.Equal(t, 0, bucket.Calls(storetest.OpGetACL))
	assert.Equal(t, 3, bucket.Calls(storetest.OpList))
	assert.Equal(t, 25, tracker.Counts()[status.OutcomeSkipped])
}

func TestRenameDryRun(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	bucket := storetest.NewBucket("bkt")
	for i := 0; i < 40; i++ {
		bucket.PutKeys(fmt.Sprintf("img/%02d.jpeg", i))
	}
	ctx, opts, tracker := createTestEnv(t, bucket, "img/", `s/\.jpeg$/.jpg/`)
	opts.DryRun = true

	var console bytes.Buffer
	ctx = log.NewContext(ctx, log.New(&console, zerolog.Nop()))

	require.NoError(t, run(t, ctx, opts))

	assert.Equal(t, 0, bucket.Calls(storetest.OpCopy))
	assert.Equal(t, 0, bucket.Calls(storetest.OpDelete))
	assert.Equal(t, 0, bucket.Calls(storetest.OpHead))
	assert.Equal(t, 0, bucket.Calls(storetest.OpGetACL))
	assert.Equal(t, 40, tracker.Counts()[status.OutcomeDryRun])
	assert.Contains(t, console.String(), "Renaming img/00.jpeg to img/00.jpg")
	assert.Len(t, bucket.Keys(), 40)
}

func TestRenameQuietSuppressesAnnouncements(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PutKeys("x/a", "x/b")
	ctx, opts, _ := createTestEnv(t, bucket, "x/", "s/x/y/")

	var console bytes.Buffer
	ctx = log.NewContext(ctx, log.New(&console, zerolog.Nop(), log.WithQuiet(true)))

	require.NoError(t, run(t, ctx, opts))
	assert.Empty(t, console.String())
	assert.Equal(t, []string{"y/a", "y/b"}, bucket.Keys())
}

func TestRenameEmptyBucket(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PutKeys("elsewhere/a")
	ctx, opts, _ := createTestEnv(t, bucket, "missing/", "s/a/b/")

	err := run(t, ctx, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrEmptyBucket)
	assert.Equal(t, 0, bucket.MutatingCalls())
}

func TestRenameListingFailureStopsBeforeMutation(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PageSize = 2
	bucket.PutKeys("a1", "a2", "a3", "a4")
	bucket.Fail(storetest.OpList, "2", &smithy.GenericAPIError{Code: "InternalError"})
	ctx, opts, _ := createTestEnv(t, bucket, "", "s/a/b/")

	err := run(t, ctx, opts)
	require.Error(t, err)
	assert.Equal(t, 0, bucket.MutatingCalls(), "no key is touched when enumeration fails")
}

func TestRenameCopyFailureKeepsSource(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PutKeys("d/1", "d/2", "d/3")
	bucket.Fail(storetest.OpCopy, "d/2", &smithy.GenericAPIError{Code: "AccessDenied"})
	ctx, opts, tracker := createTestEnv(t, bucket, "d/", "s/d/e/")

	require.NoError(t, run(t, ctx, opts), "per-key failures do not fail the run by default")

	assert.ElementsMatch(t, []string{"d/1", "d/3"}, bucket.Deletes())
	assert.Equal(t, []string{"d/2", "e/1", "e/3"}, bucket.Keys())

	failed := tracker.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "d/2", failed[0].Key)
	code, ok := store.APIErrorCode(failed[0].Err)
	assert.True(t, ok)
	assert.Equal(t, "AccessDenied", code)
}

func TestRenameResolveFailureKeepsSource(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PutKeys("d/1", "d/2")
	bucket.Fail(storetest.OpHead, "d/1", &smithy.GenericAPIError{Code: "Forbidden"})
	ctx, opts, tracker := createTestEnv(t, bucket, "d/", "s/d/e/")

	require.NoError(t, run(t, ctx, opts))
	assert.Equal(t, 1, bucket.Calls(storetest.OpCopy), "no copy for a key that failed to resolve")
	assert.Equal(t, []string{"d/2"}, bucket.Deletes())
	assert.Equal(t, 1, tracker.Counts()[status.OutcomeFailed])
}

func TestRenameFailOnError(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	for i := 0; i < 10; i++ {
		bucket.PutKeys(fmt.Sprintf("k/%d", i))
	}
	bucket.Fail(storetest.OpCopy, "k/0", &smithy.GenericAPIError{Code: "AccessDenied"})
	ctx, opts, tracker := createTestEnv(t, bucket, "k/", "s/k/K/")
	opts.FailOnError = true
	opts.Concurrency = 1

	err := run(t, ctx, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, operation.ErrKeyFailed)
	assert.Contains(t, err.Error(), "k/0")

	// with one slot the failing first key finishes before the next dispatch
	assert.Equal(t, 1, bucket.Calls(storetest.OpCopy))
	assert.Equal(t, 0, bucket.Calls(storetest.OpDelete))
	assert.Len(t, tracker.Results(), 1)
}

func TestRenameFailOnErrorDrainsScheduledDeletes(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PutKeys("k/a", "k/b")
	bucket.Fail(storetest.OpCopy, "k/b", &smithy.GenericAPIError{Code: "AccessDenied"})
	ctx, opts, _ := createTestEnv(t, bucket, "k/", "s/k/K/")
	opts.FailOnError = true
	opts.Concurrency = 1

	err := run(t, ctx, opts)
	require.Error(t, err)
	assert.Equal(t, []string{"k/a"}, bucket.Deletes(), "the delete of the earlier success still completes")
	assert.Equal(t, 0, opts.Pending.Len())
}

func TestRenameEveryCopyHasOneDelete(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PageSize = 7
	var want []string
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("raw/%03d.csv", i)
		want = append(want, key)
		bucket.PutKeys(key)
	}
	ctx, opts, tracker := createTestEnv(t, bucket, "raw/", "s/^raw/cooked/")
	opts.Concurrency = 8

	require.NoError(t, run(t, ctx, opts))

	assert.Len(t, bucket.Copies(), 50)
	assert.ElementsMatch(t, want, bucket.Deletes())
	assert.Equal(t, 50, tracker.Counts()[status.OutcomeRenamed])
	for _, k := range bucket.Keys() {
		assert.Regexp(t, `^cooked/\d{3}\.csv$`, k)
	}
}

func TestRenameFilter(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PutKeys("p/a.txt", "p/b.log", "p/sub/c.txt")
	ctx, opts, tracker := createTestEnv(t, bucket, "p/", "s/p/q/")

	cfg := &config.Config{Include: []string{"**/*.txt"}, Exclude: []string{"p/sub/**"}}
	opts.Filter = cfg.KeyFilter()

	require.NoError(t, run(t, ctx, opts))
	assert.Equal(t, []string{"p/a.txt"}, bucket.Deletes())
	assert.Equal(t, 2, tracker.Counts()[status.OutcomeFiltered])
}

// concurrencyProbe records the highest number of overlapping copies
type concurrencyProbe struct {
	*storetest.Bucket
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (p *concurrencyProbe) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return p.Bucket.CopyObject(ctx, params, optFns...)
}

func TestRenameConcurrency(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
		wantMax     int32
	}{
		{name: "serial", concurrency: 1, wantMax: 1},
		{name: "bounded", concurrency: 3, wantMax: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket := storetest.NewBucket("bkt")
			for i := 0; i < 12; i++ {
				bucket.PutKeys(fmt.Sprintf("c/%02d", i))
			}
			probe := &concurrencyProbe{Bucket: bucket}
			ctx, opts, _ := createTestEnv(t, bucket, "c/", "s/c/C/")
			opts.API = probe
			opts.Concurrency = tt.concurrency

			require.NoError(t, run(t, ctx, opts))
			assert.LessOrEqual(t, probe.peak.Load(), tt.wantMax)
			assert.Len(t, bucket.Deletes(), 12)
		})
	}
}

// 🔧 MockReporter is a mock implementation of the status.Reporter interface
type MockReporter struct {
	mock.Mock
	mu sync.Mutex
}

func (m *MockReporter) Track(ctx context.Context, result status.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called(result.Key, result.Outcome)
}

func TestRenameReportsEveryKey(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	bucket.PutKeys("r/keep", "r/move", "r/broken")
	bucket.Fail(storetest.OpCopy, "r/broken", &smithy.GenericAPIError{Code: "AccessDenied"})
	ctx, opts, _ := createTestEnv(t, bucket, "r/", "s/(move|broken)/x-\\1/")

	reporter := &MockReporter{}
	reporter.On("Track", "r/keep", status.OutcomeSkipped).Once()
	reporter.On("Track", "r/move", status.OutcomeRenamed).Once()
	reporter.On("Track", "r/broken", status.OutcomeFailed).Once()
	opts.Reporter = reporter

	require.NoError(t, run(t, ctx, opts))
	reporter.AssertExpectations(t)
	assert.ElementsMatch(t, []string{"r/keep", "r/broken", "r/x-move"}, bucket.Keys())
}

func TestNewRenameOperationValidates(t *testing.T) {
	expr, err := text.Parse("s/a/b/")
	require.NoError(t, err)
	bucket := storetest.NewBucket("bkt")

	tests := []struct {
		name string
		opts operation.Options
	}{
		{name: "missing_api", opts: operation.Options{Expression: expr, Location: config.Location{Bucket: "bkt"}}},
		{name: "missing_expression", opts: operation.Options{API: bucket, Location: config.Location{Bucket: "bkt"}}},
		{name: "missing_bucket", opts: operation.Options{API: bucket, Expression: expr}},
		{name: "negative_concurrency", opts: operation.Options{API: bucket, Expression: expr, Location: config.Location{Bucket: "bkt"}, Concurrency: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := operation.NewRenameOperation(tt.opts)
			assert.Error(t, err)
		})
	}

	op, err := operation.NewRenameOperation(operation.Options{API: bucket, Expression: expr, Location: config.Location{Bucket: "bkt"}})
	require.NoError(t, err)
	assert.NotNil(t, op.Pending())
	assert.NotNil(t, op.Reporter())
}

func TestOptionsFromConfig(t *testing.T) {
	bucket := storetest.NewBucket("bkt")
	cfg := &config.Config{
		Expression:  `s/(\d)/n\1/g`,
		URL:         "s3://bkt/pre/fix",
		DryRun:      true,
		CannedACL:   "public-read",
		Concurrency: 4,
		FailOnError: true,
	}

	opts, err := operation.OptionsFromConfig(cfg, bucket)
	require.NoError(t, err)
	assert.Equal(t, config.Location{Bucket: "bkt", Prefix: "pre/fix"}, opts.Location)
	assert.Equal(t, "a/n1n2", opts.Expression.Replace("a/12"))
	assert.True(t, opts.DryRun)
	require.NotNil(t, opts.CannedACL)
	assert.Equal(t, "public-read", opts.CannedACL.String())
	assert.Equal(t, 4, opts.Concurrency)
	assert.True(t, opts.FailOnError)
	assert.NotNil(t, opts.Pending)
	assert.NotNil(t, opts.Reporter)

	_, err = operation.OptionsFromConfig(&config.Config{Expression: "s/a/b/", URL: "http://nope"}, bucket)
	assert.ErrorIs(t, err, config.ErrInvalidURL)
}
