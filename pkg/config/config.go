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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/s3rename/pkg/acl"
	"github.com/walteh/s3rename/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the complete run configuration. It is built once at startup
// and only read afterwards.
type Config struct {
	// Expression is the s/pattern/replacement/flags substitution
	Expression string `json:"-" yaml:"-"`
	// URL is the s3://bucket/prefix location to rename under
	URL string `json:"-" yaml:"-"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty" hcl:"verbose,optional"`
	Quiet   bool `json:"quiet,omitempty" yaml:"quiet,omitempty" hcl:"quiet,optional"`
	DryRun  bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`

	NoPreserveProperties bool   `json:"no_preserve_properties,omitempty" yaml:"no_preserve_properties,omitempty" hcl:"no_preserve_properties,optional"`
	NoPreserveACL        bool   `json:"no_preserve_acl,omitempty" yaml:"no_preserve_acl,omitempty" hcl:"no_preserve_acl,optional"`
	CannedACL            string `json:"canned_acl,omitempty" yaml:"canned_acl,omitempty" hcl:"canned_acl,optional"`

	Region     string `json:"region,omitempty" yaml:"region,omitempty" hcl:"region,optional"`
	Endpoint   string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" hcl:"endpoint,optional"`
	PathStyle  bool   `json:"path_style,omitempty" yaml:"path_style,omitempty" hcl:"path_style,optional"`
	MaxRetries int    `json:"max_retries,omitempty" yaml:"max_retries,omitempty" hcl:"max_retries,optional"`

	DisableAnonymousCaptureGroups bool `json:"disable_anonymous_capture_groups,omitempty" yaml:"disable_anonymous_capture_groups,omitempty" hcl:"disable_anonymous_capture_groups,optional"`

	// Concurrency bounds in-flight renames, 0 means unlimited
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional"`
	// FailOnError stops dispatching after the first failed key and makes the run fail
	FailOnError bool `json:"fail_on_error,omitempty" yaml:"fail_on_error,omitempty" hcl:"fail_on_error,optional"`

	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`

	location string
}

// 🎯 Load loads defaults from a config file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	parser := GetParser(filepath.Base(path))
	if parser == nil {
		return nil, errors.Errorf("unsupported config file %q", path)
	}

	cfg, err := parser.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.location = path

	return cfg, nil
}

// Location returns the file the config was loaded from, empty for flag-only configs
func (c *Config) Location() string {
	return c.location
}

// ParseExpression compiles the configured substitution expression
func (c *Config) ParseExpression() (*text.Expression, error) {
	return text.Parse(c.Expression, text.WithAnonymousCaptureGroups(!c.DisableAnonymousCaptureGroups))
}

// Canned returns the configured canned ACL override, if any
func (c *Config) Canned() (*acl.Canned, error) {
	if c.CannedACL == "" {
		return nil, nil
	}
	canned, err := acl.ParseCanned(c.CannedACL)
	if err != nil {
		return nil, err
	}
	return &canned, nil
}

// ✅ Validate checks every value before any store call is made
func (c *Config) Validate(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Interface("config", c).Msg("validating configuration")

	if strings.TrimSpace(c.Expression) == "" {
		return errors.Errorf("%w: expression is required", text.ErrInvalidExpression)
	}
	if _, err := c.ParseExpression(); err != nil {
		return err
	}

	if _, err := ParseLocation(c.URL); err != nil {
		return err
	}

	if _, err := c.Canned(); err != nil {
		return err
	}

	if c.Concurrency < 0 {
		return errors.Errorf("concurrency must be zero (unlimited) or positive, got %d", c.Concurrency)
	}
	if c.MaxRetries < 0 {
		return errors.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}

	for _, pattern := range append(append([]string{}, c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid key filter pattern %q", pattern)
		}
	}

	return nil
}

// KeyFilter reports whether a key passes the include and exclude globs.
// With no include patterns every key is included.
func (c *Config) KeyFilter() func(key string) bool {
	include := append([]string{}, c.Include...)
	exclude := append([]string{}, c.Exclude...)
	return func(key string) bool {
		if len(include) > 0 && !matchAny(include, key) {
			return false
		}
		return !matchAny(exclude, key)
	}
}

func matchAny(patterns []string, key string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, key); err == nil && ok {
			return true
		}
	}
	return false
}
