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
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/s3rename/pkg/acl"
	"github.com/walteh/s3rename/pkg/log"
	"github.com/walteh/s3rename/pkg/store"
)

// 📋 Descriptor is everything needed to issue one copy
type Descriptor struct {
	Bucket       string
	Source       string
	Target       string
	StorageClass string

	// Head is the source's properties, nil when properties are not preserved
	Head *s3.HeadObjectOutput

	// CannedACL is applied when set, otherwise Grants are
	CannedACL types.ObjectCannedACL
	Grants    acl.Grants
}

// 🔍 Resolver gathers the properties and grants a copy should carry
type Resolver struct {
	api                  store.API
	bucket               string
	noPreserveProperties bool
	noPreserveACL        bool
	canned               *acl.Canned
}

// NewResolver creates a Resolver for bucket from opts
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		api:                  opts.API,
		bucket:               opts.Location.Bucket,
		noPreserveProperties: opts.NoPreserveProperties,
		noPreserveACL:        opts.NoPreserveACL,
		canned:               opts.CannedACL,
	}
}

// Resolve builds the copy descriptor for c. It fails when the head or grant
// lookup fails or a grant cannot be translated.
func (r *Resolver) Resolve(ctx context.Context, c RenameCandidate) (*Descriptor, error) {
	desc := &Descriptor{
		Bucket:       r.bucket,
		Source:       c.Source,
		Target:       c.Target,
		StorageClass: c.StorageClass,
	}

	if err := r.resolveACL(ctx, desc); err != nil {
		return nil, err
	}

	if !r.noPreserveProperties {
		head, err := r.api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(c.Source),
		})
		if err != nil {
			return nil, errors.Errorf("reading properties of %s: %w", c.Source, err)
		}
		desc.Head = head
	}

	return desc, nil
}

func (r *Resolver) resolveACL(ctx context.Context, desc *Descriptor) error {
	switch {
	case r.canned != nil:
		desc.CannedACL = r.canned.ObjectCannedACL()
		return nil
	case r.noPreserveACL:
		desc.CannedACL = acl.Private.ObjectCannedACL()
		return nil
	}

	out, err := r.api.GetObjectAcl(ctx, &s3.GetObjectAclInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(desc.Source),
	})
	if err != nil {
		return errors.Errorf("reading grants of %s: %w", desc.Source, err)
	}

	grants, dropped, err := acl.Translate(out.Grants)
	if err != nil {
		return errors.Errorf("translating grants of %s: %w", desc.Source, err)
	}
	for _, g := range dropped {
		zerolog.Ctx(ctx).Warn().Str("key", desc.Source).Str("grantee", acl.DescribeGrantee(g.Grantee)).Msg("dropping WRITE grant")
		log.FromContext(ctx).Warningf("WRITE access ignored for grantee %s on key %s", acl.DescribeGrantee(g.Grantee), desc.Source)
	}
	desc.Grants = grants

	return nil
}

// CopySource is the escaped bucket/key reference to the source object
func (d *Descriptor) CopySource() string {
	segments := strings.Split(d.Source, store.Delimiter)
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return d.Bucket + "/" + strings.Join(segments, store.Delimiter)
}

// Input builds the copy request. Preserved properties replace the target's
// metadata, since multipart copies otherwise drop custom metadata. Customer
// supplied encryption keys are never sent.
func (d *Descriptor) Input() *s3.CopyObjectInput {
	in := &s3.CopyObjectInput{
		Bucket:            aws.String(d.Bucket),
		Key:               aws.String(d.Target),
		CopySource:        aws.String(d.CopySource()),
		ACL:               d.CannedACL,
		GrantRead:         acl.Header(d.Grants.Read),
		GrantReadACP:      acl.Header(d.Grants.ReadACP),
		GrantWriteACP:     acl.Header(d.Grants.WriteACP),
		GrantFullControl:  acl.Header(d.Grants.FullControl),
		StorageClass:      types.StorageClass(d.StorageClass),
		MetadataDirective: types.MetadataDirectiveCopy,
	}

	h := d.Head
	if h == nil {
		return in
	}

	in.MetadataDirective = types.MetadataDirectiveReplace
	in.TaggingDirective = types.TaggingDirectiveCopy

	in.CacheControl = h.CacheControl
	in.ContentDisposition = h.ContentDisposition
	in.ContentEncoding = h.ContentEncoding
	in.ContentLanguage = h.ContentLanguage
	in.ContentType = h.ContentType
	in.Expires = h.Expires //nolint:staticcheck // still returned by HeadObject
	in.Metadata = h.Metadata
	in.WebsiteRedirectLocation = h.WebsiteRedirectLocation

	in.ServerSideEncryption = h.ServerSideEncryption
	in.SSEKMSKeyId = h.SSEKMSKeyId
	in.BucketKeyEnabled = h.BucketKeyEnabled
	in.SSECustomerAlgorithm = h.SSECustomerAlgorithm
	in.SSECustomerKeyMD5 = h.SSECustomerKeyMD5
	in.CopySourceSSECustomerAlgorithm = h.SSECustomerAlgorithm
	in.CopySourceSSECustomerKeyMD5 = h.SSECustomerKeyMD5

	in.ObjectLockMode = h.ObjectLockMode
	in.ObjectLockLegalHoldStatus = h.ObjectLockLegalHoldStatus
	in.ObjectLockRetainUntilDate = h.ObjectLockRetainUntilDate

	if h.RequestCharged == types.RequestChargedRequester {
		in.RequestPayer = types.RequestPayerRequester
	}

	return in
}
