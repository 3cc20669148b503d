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

package main

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/s3rename/cmd/s3rename/opts"
	"github.com/walteh/s3rename/pkg/config"
	"github.com/walteh/s3rename/pkg/log"
	"github.com/walteh/s3rename/pkg/operation"
	"github.com/walteh/s3rename/pkg/status"
	"github.com/walteh/s3rename/pkg/store"
)

// runRename resolves the bucket region, then runs the rename and prints the summary
func runRename(ctx context.Context, o *opts.RootOpts) error {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)
	cfg := o.Config

	loc, err := config.ParseLocation(cfg.URL)
	if err != nil {
		return err
	}

	console.Infof("expression %q on %s", cfg.Expression, loc)
	logger.Debug().Interface("config", cfg).Msg("parsed configuration")

	newAPI := o.NewAPI
	if newAPI == nil {
		newAPI = opts.S3API
	}

	bootRegion := cfg.Region
	if bootRegion == "" {
		bootRegion = store.DefaultRegion
	}
	boot, err := newAPI(ctx, cfg, bootRegion)
	if err != nil {
		return errors.Errorf("creating store client: %w", err)
	}

	region, err := store.ResolveRegion(ctx, boot, loc.Bucket, cfg.Region)
	if err != nil {
		return err
	}
	console.Infof("using region %s", region)

	api := boot
	if region != bootRegion {
		api, err = newAPI(ctx, cfg, region)
		if err != nil {
			return errors.Errorf("creating store client for %s: %w", region, err)
		}
	}

	opOpts, err := operation.OptionsFromConfig(cfg, api)
	if err != nil {
		return err
	}
	op, err := operation.NewRenameOperation(opOpts)
	if err != nil {
		return errors.Errorf("creating rename operation: %w", err)
	}

	console.Header("renaming " + loc.String())
	runErr := op.Execute(ctx)

	if tracker, ok := op.Reporter().(*status.Tracker); ok {
		printSummary(ctx, tracker, op)
	}

	return runErr
}

func printSummary(ctx context.Context, tracker *status.Tracker, op *operation.RenameOperation) {
	console := log.FromContext(ctx)

	counts := tracker.Counts()
	if len(counts) > 0 {
		summary, err := tracker.Summary()
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("rendering summary")
		} else {
			console.Print(summary)
		}
	}

	if failed := op.Pending().Failed(); len(failed) > 0 {
		console.Warningf("%d source keys could not be deleted and exist under both names", len(failed))
	}

	switch {
	case counts[status.OutcomeFailed] > 0:
		console.Warningf("%d keys failed to rename", counts[status.OutcomeFailed])
	case counts[status.OutcomeDryRun] > 0:
		console.Successf("dry run: %d keys would be renamed", counts[status.OutcomeDryRun])
	default:
		console.Successf("renamed %d keys", counts[status.OutcomeRenamed])
	}
}
