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

// Package operation provides the rename pipeline
package operation

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/s3rename/pkg/acl"
	"github.com/walteh/s3rename/pkg/cleanup"
	"github.com/walteh/s3rename/pkg/config"
	"github.com/walteh/s3rename/pkg/status"
	"github.com/walteh/s3rename/pkg/store"
	"github.com/walteh/s3rename/pkg/text"
)

// ErrKeyFailed wraps the first per-key failure when FailOnError is set
var ErrKeyFailed = errors.Base("rename failed")

// 🎯 Operation is a runnable unit of work
type Operation interface {
	Execute(ctx context.Context) error
}

// 🔧 Options contains everything a rename run needs
type Options struct {
	// API is the object store client
	API store.API
	// Location is the bucket and prefix to rename under
	Location config.Location
	// Expression computes new key names
	Expression text.Replacer
	// Filter, when set, excludes keys it returns false for
	Filter func(key string) bool

	DryRun               bool
	NoPreserveProperties bool
	NoPreserveACL        bool
	// CannedACL overrides grant preservation when set
	CannedACL *acl.Canned

	// Concurrency bounds in-flight keys, 0 means unlimited
	Concurrency int
	// FailOnError stops dispatch at the first per-key failure
	FailOnError bool
	// PageSize is the listing page size, 0 lets the store choose
	PageSize int32

	// Pending receives scheduled deletes and is drained before Execute returns
	Pending *cleanup.Pending
	// Reporter receives one result per listed key
	Reporter status.Reporter
}

// 🏭 OptionsFromConfig builds Options from a validated config
func OptionsFromConfig(cfg *config.Config, api store.API) (Options, error) {
	loc, err := config.ParseLocation(cfg.URL)
	if err != nil {
		return Options{}, err
	}

	expr, err := cfg.ParseExpression()
	if err != nil {
		return Options{}, err
	}

	canned, err := cfg.Canned()
	if err != nil {
		return Options{}, err
	}

	return Options{
		API:                  api,
		Location:             loc,
		Expression:           expr,
		Filter:               cfg.KeyFilter(),
		DryRun:               cfg.DryRun,
		NoPreserveProperties: cfg.NoPreserveProperties,
		NoPreserveACL:        cfg.NoPreserveACL,
		CannedACL:            canned,
		Concurrency:          cfg.Concurrency,
		FailOnError:          cfg.FailOnError,
		Pending:              cleanup.NewPending(),
		Reporter:             status.New(),
	}, nil
}

func (o Options) validate() error {
	if o.API == nil {
		return errors.Errorf("store api is required")
	}
	if o.Expression == nil {
		return errors.Errorf("expression is required")
	}
	if o.Location.Bucket == "" {
		return errors.Errorf("bucket is required")
	}
	if o.Concurrency < 0 {
		return errors.Errorf("concurrency must not be negative, got %d", o.Concurrency)
	}
	return nil
}
