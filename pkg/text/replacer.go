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

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidExpression is returned when a substitution expression cannot be parsed
var ErrInvalidExpression = errors.Base("invalid substitution expression")

// Replacer transforms a single key into its replacement
type Replacer interface {
	// Replace returns the transformed key, or the input unchanged when nothing matched
	Replace(key string) string
}

// 🔄 Expression is a compiled s/pattern/replacement/flags command.
// It is immutable after Parse and safe for concurrent use.
type Expression struct {
	source      string
	pattern     *regexp.Regexp
	replacement string
	global      bool
}

var _ Replacer = (*Expression)(nil)

// String returns the expression as it was given to Parse
func (e *Expression) String() string {
	return e.source
}

// Pattern returns the compiled match pattern (flags applied)
func (e *Expression) Pattern() string {
	return e.pattern.String()
}

// ReplacementTemplate returns the replacement in native $N syntax
func (e *Expression) ReplacementTemplate() string {
	return e.replacement
}

// Global reports whether every match is replaced instead of only the first
func (e *Expression) Global() bool {
	return e.global
}

// 🎯 Replace applies the expression to key
func (e *Expression) Replace(key string) string {
	if e.global {
		return e.pattern.ReplaceAllString(key, e.replacement)
	}

	loc := e.pattern.FindStringSubmatchIndex(key)
	if loc == nil {
		return key
	}

	dst := e.pattern.ExpandString(nil, e.replacement, key, loc)
	return key[:loc[0]] + string(dst) + key[loc[1]:]
}
