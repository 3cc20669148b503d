package store

import (
	"context"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Delimiter separates key path segments
const Delimiter = "/"

// ErrEmptyBucket is returned when the first listing page has no contents
var ErrEmptyBucket = errors.Base("bucket is empty, or no matching prefixes")

// ObjectKey is a listed key and its storage class (empty when the store did not report one)
type ObjectKey struct {
	Name         string
	StorageClass string
}

// IsDirectoryMarker reports whether key stands for an empty "directory"
func IsDirectoryMarker(key string) bool {
	return strings.HasSuffix(key, Delimiter)
}

// 📂 Lister enumerates every key under a prefix
type Lister struct {
	api      API
	pageSize int32
}

// NewLister creates a Lister. pageSize 0 lets the store choose.
func NewLister(api API, pageSize int32) *Lister {
	return &Lister{api: api, pageSize: pageSize}
}

// List pages through bucket/prefix following continuation tokens until the
// store reports no truncation. Directory markers are skipped. An empty first
// page is an error, not an empty result. The sequence stops at the first error.
func (l *Lister) List(ctx context.Context, bucket, prefix string) iter.Seq2[ObjectKey, error] {
	return func(yield func(ObjectKey, error) bool) {
		logger := zerolog.Ctx(ctx)
		var token *string

		for page := 0; ; page++ {
			input := &s3.ListObjectsV2Input{
				Bucket:            aws.String(bucket),
				ContinuationToken: token,
			}
			if prefix != "" {
				input.Prefix = aws.String(prefix)
			}
			if l.pageSize > 0 {
				input.MaxKeys = aws.Int32(l.pageSize)
			}

			out, err := l.api.ListObjectsV2(ctx, input)
			if err != nil {
				yield(ObjectKey{}, errors.Errorf("listing s3://%s/%s page %d: %w", bucket, prefix, page, err))
				return
			}

			if page == 0 && len(out.Contents) == 0 {
				yield(ObjectKey{}, errors.Errorf("%w: s3://%s/%s", ErrEmptyBucket, bucket, prefix))
				return
			}

			logger.Debug().Int("page", page).Int("keys", len(out.Contents)).Msg("listed page")

			for _, obj := range out.Contents {
				if obj.Key == nil || IsDirectoryMarker(*obj.Key) {
					continue
				}
				if !yield(ObjectKey{Name: *obj.Key, StorageClass: string(obj.StorageClass)}, nil) {
					return
				}
			}

			if !aws.ToBool(out.IsTruncated) {
				return
			}
			if aws.ToString(out.NextContinuationToken) == "" {
				yield(ObjectKey{}, errors.Errorf("listing s3://%s/%s page %d: truncated response without continuation token", bucket, prefix, page))
				return
			}
			token = out.NextContinuationToken
		}
	}
}

// Collect drains a listing into a slice
func Collect(seq iter.Seq2[ObjectKey, error]) ([]ObjectKey, error) {
	var keys []ObjectKey
	for key, err := range seq {
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
