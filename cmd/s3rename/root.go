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
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/s3rename/cmd/s3rename/opts"
	"github.com/walteh/s3rename/pkg/acl"
	"github.com/walteh/s3rename/pkg/config"
	"github.com/walteh/s3rename/pkg/log"
)

// rootFlags holds the raw flag values before they are merged with the config file
type rootFlags struct {
	configFile string
	config     config.Config
}

// newRootCmd creates the root command
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "s3rename [flags] EXPRESSION s3://BUCKET/[PREFIX]",
		Short: "Rename keys on S3 with regular expressions",
		Long: `s3rename lists every key under an S3 prefix, applies a sed style
substitution (s/pattern/replacement/flags) to each key and, for every key that
changes, copies the object to its new name and then deletes the original.

A source object is never deleted unless its copy succeeded. Object properties
and grants are carried over unless disabled.`,
		Example: `  s3rename 's/\.jpeg$/.jpg/' s3://photos/2024/
  s3rename -n 's/(\d{4})-(\d{2})/\1\/\2/' s3://logs/
  s3rename --canned-acl bucket-owner-full-control 's/^tmp\//final\//' s3://bucket/tmp/`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, o, flags, args)
			if err != nil {
				return err
			}
			o.Config = cfg

			ctx := setupLogging(cmd.Context(), o, cfg)
			return runRename(ctx, o)
		},
	}

	addRootFlags(cmd, flags)
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// addRootFlags adds the rename flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (yaml, hcl or json)")

	f := cmd.Flags()
	f.BoolVarP(&flags.config.Verbose, "verbose", "v", false, "print debug messages")
	f.BoolVarP(&flags.config.Quiet, "quiet", "q", false, "do not print key modifications")
	f.BoolVarP(&flags.config.DryRun, "dry-run", "n", false, "do not carry out modifications (only print)")
	f.BoolVar(&flags.config.NoPreserveProperties, "no-preserve-properties", false, "do not carry metadata, encryption or object lock settings to the new key")
	f.BoolVar(&flags.config.NoPreserveACL, "no-preserve-acl", false, "do not carry grants to the new key, apply the canned ACL (private by default)")
	f.StringVar(&flags.config.CannedACL, "canned-acl", "", "canned ACL for new keys, one of: "+strings.Join(acl.CannedNames(), ", "))
	f.StringVar(&flags.config.Region, "region", "", "AWS region (taken from the bucket location if not set)")
	f.StringVar(&flags.config.Endpoint, "endpoint", "", "S3 compatible endpoint URL")
	f.BoolVar(&flags.config.PathStyle, "path-style", false, "use path style addressing")
	f.IntVar(&flags.config.MaxRetries, "max-retries", 0, "maximum attempts per request (0 keeps the SDK default)")
	f.BoolVar(&flags.config.DisableAnonymousCaptureGroups, "disable-anonymous-capture-groups", false, `do not rewrite \1 style references to ${1}`)
	f.IntVar(&flags.config.Concurrency, "concurrency", 0, "maximum keys renamed at once (0 is unlimited)")
	f.BoolVar(&flags.config.FailOnError, "fail-on-error", false, "stop at the first failed key and exit non-zero")
	f.StringSliceVar(&flags.config.Include, "include", nil, "only rename keys matching these globs")
	f.StringSliceVar(&flags.config.Exclude, "exclude", nil, "never rename keys matching these globs")

	f.SetNormalizeFunc(normalizeFlagName)
}

// normalizeFlagName accepts the older --aws-region spelling
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "aws-region" {
		name = "region"
	}
	return pflag.NormalizedName(name)
}

// resolveConfig layers explicitly set flags over the config file
func resolveConfig(cmd *cobra.Command, o *opts.RootOpts, flags *rootFlags, args []string) (*config.Config, error) {
	ctx := cmd.Context()

	cfg := &config.Config{}
	path := flags.configFile
	if path == "" && o.DefaultConfigFile != "" {
		if _, err := os.Stat(o.DefaultConfigFile); err == nil {
			path = o.DefaultConfigFile
		}
	}
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	mergeFlags(cmd.Flags().Changed, cfg, &flags.config)
	cfg.Expression = args[0]
	cfg.URL = args[1]

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags copies every changed flag from src into dst
func mergeFlags(changed func(string) bool, dst, src *config.Config) {
	set := map[string]func(){
		"verbose":                          func() { dst.Verbose = src.Verbose },
		"quiet":                            func() { dst.Quiet = src.Quiet },
		"dry-run":                          func() { dst.DryRun = src.DryRun },
		"no-preserve-properties":           func() { dst.NoPreserveProperties = src.NoPreserveProperties },
		"no-preserve-acl":                  func() { dst.NoPreserveACL = src.NoPreserveACL },
		"canned-acl":                       func() { dst.CannedACL = src.CannedACL },
		"region":                           func() { dst.Region = src.Region },
		"endpoint":                         func() { dst.Endpoint = src.Endpoint },
		"path-style":                       func() { dst.PathStyle = src.PathStyle },
		"max-retries":                      func() { dst.MaxRetries = src.MaxRetries },
		"disable-anonymous-capture-groups": func() { dst.DisableAnonymousCaptureGroups = src.DisableAnonymousCaptureGroups },
		"concurrency":                      func() { dst.Concurrency = src.Concurrency },
		"fail-on-error":                    func() { dst.FailOnError = src.FailOnError },
		"include":                          func() { dst.Include = src.Include },
		"exclude":                          func() { dst.Exclude = src.Exclude },
	}
	for name, apply := range set {
		if changed(name) {
			apply()
		}
	}
}

// setupLogging installs the zerolog and console loggers for cfg
func setupLogging(ctx context.Context, o *opts.RootOpts, cfg *config.Config) context.Context {
	level := zerolog.InfoLevel
	switch {
	case cfg.Verbose:
		level = zerolog.DebugLevel
	case cfg.Quiet:
		level = zerolog.WarnLevel
	}

	var stderr io.Writer = os.Stderr
	if o.Stderr != nil {
		stderr = o.Stderr
	}
	var stdout io.Writer = os.Stdout
	if o.Stdout != nil {
		stdout = o.Stdout
	}

	writer := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = stderr
	})
	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	console := log.New(stdout, logger, log.WithQuiet(cfg.Quiet), log.WithVerbose(cfg.Verbose))
	return log.NewContext(ctx, console)
}
