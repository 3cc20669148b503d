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

package operation

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/s3rename/pkg/cleanup"
	"github.com/walteh/s3rename/pkg/log"
	"github.com/walteh/s3rename/pkg/status"
	"github.com/walteh/s3rename/pkg/store"
)

// 📦 RenameOperation renames every matching key under a location
type RenameOperation struct {
	opts        Options
	lister      *store.Lister
	transformer *Transformer
	resolver    *Resolver
}

var _ Operation = (*RenameOperation)(nil)

// 🏭 NewRenameOperation creates a rename operation. A nil Pending or Reporter
// gets a fresh one.
func NewRenameOperation(opts Options) (*RenameOperation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Pending == nil {
		opts.Pending = cleanup.NewPending()
	}
	if opts.Reporter == nil {
		opts.Reporter = status.New()
	}

	return &RenameOperation{
		opts:        opts,
		lister:      store.NewLister(opts.API, opts.PageSize),
		transformer: NewTransformer(opts.Expression),
		resolver:    NewResolver(opts),
	}, nil
}

// Reporter returns the reporter results are sent to
func (op *RenameOperation) Reporter() status.Reporter {
	return op.opts.Reporter
}

// Pending returns the set scheduled deletes are registered in
func (op *RenameOperation) Pending() *cleanup.Pending {
	return op.opts.Pending
}

// 🏃 Execute lists every key, then dispatches one task per changed key and
// waits for them. It returns only after every scheduled delete has finished.
func (op *RenameOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)
	loc := op.opts.Location

	// keys are collected up front so targets created during the run are never
	// listed and renamed a second time
	keys, err := store.Collect(op.lister.List(ctx, loc.Bucket, loc.Prefix))
	if err != nil {
		return errors.Errorf("enumerating %s: %w", loc, err)
	}
	console.Infof("found %d keys under %s", len(keys), loc)
	for _, k := range keys {
		logger.Debug().Str("key", k.Name).Str("storage_class", k.StorageClass).Msg("listed")
	}

	var g errgroup.Group
	if op.opts.Concurrency > 0 {
		g.SetLimit(op.opts.Concurrency)
	}

	var stopped atomic.Bool

	for _, key := range keys {
		if stopped.Load() {
			logger.Debug().Str("key", key.Name).Msg("not dispatched after earlier failure")
			continue
		}

		if op.opts.Filter != nil && !op.opts.Filter(key.Name) {
			op.opts.Reporter.Track(ctx, status.Result{Key: key.Name, Outcome: status.OutcomeFiltered})
			continue
		}

		candidate, ok := op.transformer.Transform(key)
		if !ok {
			console.Skip(ctx, key.Name)
			op.opts.Reporter.Track(ctx, status.Result{Key: key.Name, Outcome: status.OutcomeSkipped})
			continue
		}

		if op.opts.DryRun {
			console.Rename(ctx, log.KeyOperation{From: candidate.Source, To: candidate.Target, DryRun: true})
			op.opts.Reporter.Track(ctx, status.Result{Key: candidate.Source, Target: candidate.Target, Outcome: status.OutcomeDryRun})
			continue
		}

		g.Go(func() error {
			// a slot may free up only because an earlier key just failed
			if stopped.Load() {
				logger.Debug().Str("key", candidate.Source).Msg("not dispatched after earlier failure")
				return nil
			}
			console.Rename(ctx, log.KeyOperation{From: candidate.Source, To: candidate.Target})
			err := op.renameKey(ctx, candidate)
			if err == nil {
				return nil
			}
			if op.opts.FailOnError {
				stopped.Store(true)
				return errors.Errorf("%w: %s: %s", ErrKeyFailed, candidate.Source, err.Error())
			}
			return nil
		})
	}

	waitErr := g.Wait()

	// the barrier holds even when the run was interrupted
	if err := op.opts.Pending.Drain(context.WithoutCancel(ctx)); err != nil {
		return errors.Errorf("waiting for source deletes: %w", err)
	}

	return waitErr
}

// renameKey copies one key and hands the source to a guard. Failures are
// reported here and returned for the dispatch policy.
func (op *RenameOperation) renameKey(ctx context.Context, c RenameCandidate) error {
	logger := zerolog.Ctx(ctx).With().Str("from", c.Source).Str("to", c.Target).Logger()
	ctx = logger.WithContext(ctx)

	fail := func(err error) error {
		store.LogError(logger.Error(), err).Msg("rename failed")
		log.FromContext(ctx).Errorf("failed to rename %s: %v", c.Source, err)
		op.opts.Reporter.Track(ctx, status.Result{Key: c.Source, Target: c.Target, Outcome: status.OutcomeFailed, Err: err})
		return err
	}

	desc, err := op.resolver.Resolve(ctx, c)
	if err != nil {
		return fail(err)
	}

	guard, err := cleanup.Begin(ctx, op.opts.API, desc.Input(), c.Source, op.opts.Pending)
	if err != nil {
		return fail(err)
	}
	defer guard.Close()

	op.opts.Reporter.Track(ctx, status.Result{Key: c.Source, Target: c.Target, Outcome: status.OutcomeRenamed})
	return nil
}
