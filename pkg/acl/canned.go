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

package acl

import (
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidCannedACL is returned for names outside the canned ACL table
var ErrInvalidCannedACL = errors.Base("invalid canned ACL")

// 🔒 Canned is a predefined access policy applied wholesale to a copied object
type Canned string

const (
	Private                Canned = "private"
	PublicRead             Canned = "public-read"
	PublicReadWrite        Canned = "public-read-write"
	AuthenticatedRead      Canned = "authenticated-read"
	AWSExecRead            Canned = "aws-exec-read"
	BucketOwnerRead        Canned = "bucket-owner-read"
	BucketOwnerFullControl Canned = "bucket-owner-full-control"
)

var cannedTable = map[string]Canned{
	string(Private):                Private,
	string(PublicRead):             PublicRead,
	string(PublicReadWrite):        PublicReadWrite,
	string(AuthenticatedRead):      AuthenticatedRead,
	string(AWSExecRead):            AWSExecRead,
	string(BucketOwnerRead):        BucketOwnerRead,
	string(BucketOwnerFullControl): BucketOwnerFullControl,
}

// CannedNames lists every accepted canned ACL name, sorted
func CannedNames() []string {
	names := make([]string, 0, len(cannedTable))
	for name := range cannedTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseCanned looks name up in the canned ACL table
func ParseCanned(name string) (Canned, error) {
	c, ok := cannedTable[name]
	if !ok {
		return "", errors.Errorf("%w: %q, must be one of: %s", ErrInvalidCannedACL, name, strings.Join(CannedNames(), ", "))
	}
	return c, nil
}

// ObjectCannedACL converts to the SDK enum
func (c Canned) ObjectCannedACL() types.ObjectCannedACL {
	return types.ObjectCannedACL(c)
}

func (c Canned) String() string {
	return string(c)
}
