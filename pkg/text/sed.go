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

package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

type parseConfig struct {
	anonymousCaptureGroups bool
}

// Option configures Parse
type Option func(*parseConfig)

// WithAnonymousCaptureGroups toggles rewriting of \N references into ${N}.
// Enabled by default.
func WithAnonymousCaptureGroups(enabled bool) Option {
	return func(c *parseConfig) {
		c.anonymousCaptureGroups = enabled
	}
}

// 🏭 Parse compiles a sed style substitution command.
//
// The accepted form is s<d>pattern<d>replacement<d>flags where <d> is any
// single non alphanumeric delimiter. A backslash before the delimiter
// escapes it. Supported flags are g (replace all matches), i, m, s and U.
func Parse(expr string, opts ...Option) (*Expression, error) {
	cfg := parseConfig{anonymousCaptureGroups: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	src := expr
	if cfg.anonymousCaptureGroups {
		src = RewriteAnonymousCaptureGroups(src)
	}

	if !strings.HasPrefix(src, "s") {
		return nil, errors.Errorf("%w: %q must start with 's'", ErrInvalidExpression, expr)
	}

	delim, size := utf8.DecodeRuneInString(src[1:])
	if size == 0 || delim == utf8.RuneError {
		return nil, errors.Errorf("%w: %q is missing a delimiter", ErrInvalidExpression, expr)
	}
	if delim == '\\' || delim == '\n' || unicode.IsLetter(delim) || unicode.IsDigit(delim) {
		return nil, errors.Errorf("%w: %q uses invalid delimiter %q", ErrInvalidExpression, expr, delim)
	}

	parts, rest, err := splitSections(src[1+size:], delim, 2)
	if err != nil {
		return nil, errors.Errorf("%w: %q: %s", ErrInvalidExpression, expr, err.Error())
	}

	global := false
	var inline strings.Builder
	for _, flag := range rest {
		switch flag {
		case 'g':
			global = true
		case 'i', 'm', 's', 'U':
			if !strings.ContainsRune(inline.String(), flag) {
				inline.WriteRune(flag)
			}
		default:
			return nil, errors.Errorf("%w: %q has unsupported flag %q", ErrInvalidExpression, expr, flag)
		}
	}

	pattern := parts[0]
	if pattern == "" {
		return nil, errors.Errorf("%w: %q has an empty pattern", ErrInvalidExpression, expr)
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("%w: %q: %s", ErrInvalidExpression, expr, err.Error())
	}

	return &Expression{
		source:      expr,
		pattern:     re,
		replacement: parts[1],
		global:      global,
	}, nil
}

// splitSections reads n delimiter-terminated sections from s and returns
// them together with whatever follows the last delimiter.
func splitSections(s string, delim rune, n int) ([]string, string, error) {
	sections := make([]string, 0, n)
	var cur strings.Builder

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\\' && i+size < len(s):
			next, nsize := utf8.DecodeRuneInString(s[i+size:])
			if next == delim {
				cur.WriteRune(delim)
			} else {
				cur.WriteRune(r)
				cur.WriteRune(next)
			}
			i += size + nsize
			continue
		case r == delim:
			sections = append(sections, cur.String())
			cur.Reset()
			if len(sections) == n {
				return sections, s[i+size:], nil
			}
		default:
			cur.WriteRune(r)
		}
		i += size
	}

	return nil, "", errors.Errorf("expected %d sections terminated by %q", n, delim)
}
