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
	"github.com/walteh/s3rename/pkg/store"
	"github.com/walteh/s3rename/pkg/text"
)

// 📄 RenameCandidate is a key whose name changes
type RenameCandidate struct {
	Source       string
	Target       string
	StorageClass string
}

// 🔄 Transformer computes new names for listed keys
type Transformer struct {
	replacer text.Replacer
}

// NewTransformer creates a Transformer around replacer
func NewTransformer(replacer text.Replacer) *Transformer {
	return &Transformer{replacer: replacer}
}

// Transform applies the substitution to key. It reports false when the name
// does not change, in which case the key must be left alone.
func (t *Transformer) Transform(key store.ObjectKey) (RenameCandidate, bool) {
	target := t.replacer.Replace(key.Name)
	if target == key.Name {
		return RenameCandidate{}, false
	}
	return RenameCandidate{
		Source:       key.Name,
		Target:       target,
		StorageClass: key.StorageClass,
	}, true
}
