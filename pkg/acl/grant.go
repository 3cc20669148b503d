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
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrNoValidID         = errors.Base("grantee has no uri, id or email address")
	ErrInvalidPermission = errors.Base("invalid grant permission")
	ErrMissingPermission = errors.Base("missing grant permission")
)

// 📋 Grants holds rendered grantees per permission kind that a copy request can carry
type Grants struct {
	Read        []string
	ReadACP     []string
	WriteACP    []string
	FullControl []string
}

// Empty reports whether no grantee was collected
func (g Grants) Empty() bool {
	return len(g.Read) == 0 && len(g.ReadACP) == 0 && len(g.WriteACP) == 0 && len(g.FullControl) == 0
}

// Header joins a grant list into a single directive, nil when the list is empty
func Header(list []string) *string {
	if len(list) == 0 {
		return nil
	}
	return aws.String(strings.Join(list, ", "))
}

// Translate sorts store grants into Grants. WRITE grants have no copy
// equivalent; they are returned separately so callers can warn about them.
func Translate(grants []types.Grant) (Grants, []types.Grant, error) {
	var out Grants
	var dropped []types.Grant

	for _, grant := range grants {
		var dst *[]string
		switch grant.Permission {
		case types.PermissionRead:
			dst = &out.Read
		case types.PermissionReadAcp:
			dst = &out.ReadACP
		case types.PermissionWriteAcp:
			dst = &out.WriteACP
		case types.PermissionFullControl:
			dst = &out.FullControl
		case types.PermissionWrite:
			dropped = append(dropped, grant)
			continue
		case "":
			return Grants{}, nil, errors.Errorf("%w for grantee %s", ErrMissingPermission, DescribeGrantee(grant.Grantee))
		default:
			return Grants{}, nil, errors.Errorf("%w: %s for grantee %s", ErrInvalidPermission, grant.Permission, DescribeGrantee(grant.Grantee))
		}

		rendered, err := RenderGrantee(grant.Grantee)
		if err != nil {
			return Grants{}, nil, err
		}
		*dst = append(*dst, rendered)
	}

	return out, dropped, nil
}

// RenderGrantee formats a grantee as kind="value" using the first present of
// URI, canonical ID and email address.
func RenderGrantee(g *types.Grantee) (string, error) {
	if g != nil {
		if g.URI != nil {
			return fmt.Sprintf(`uri="%s"`, *g.URI), nil
		}
		if g.ID != nil {
			return fmt.Sprintf(`id="%s"`, *g.ID), nil
		}
		if g.EmailAddress != nil {
			return fmt.Sprintf(`emailAddress="%s"`, *g.EmailAddress), nil
		}
	}
	return "", errors.Errorf("%w: %s", ErrNoValidID, DescribeGrantee(g))
}

// DescribeGrantee is a human readable form of g for logs and errors
func DescribeGrantee(g *types.Grantee) string {
	if g == nil {
		return "<nil>"
	}
	parts := []string{"type=" + string(g.Type)}
	if g.DisplayName != nil {
		parts = append(parts, "name="+*g.DisplayName)
	}
	if g.URI != nil {
		parts = append(parts, "uri="+*g.URI)
	}
	if g.ID != nil {
		parts = append(parts, "id="+*g.ID)
	}
	if g.EmailAddress != nil {
		parts = append(parts, "email="+*g.EmailAddress)
	}
	return "{" + strings.Join(parts, " ") + "}"
}
