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

package cleanup

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/s3rename/pkg/store"
)

// Copier is the part of the store a Guard needs
type Copier interface {
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var _ Copier = (store.API)(nil)

// 🛡️ Guard owns the source object of a completed copy. Closing it schedules
// the source delete.
type Guard struct {
	ctx       context.Context
	api       Copier
	bucket    string
	sourceKey string
	pending   *Pending

	once   sync.Once
	handle *Handle
}

// Begin performs the copy described by input and, only if it succeeds,
// returns a Guard for sourceKey. A failed copy schedules nothing.
func Begin(ctx context.Context, api Copier, input *s3.CopyObjectInput, sourceKey string, pending *Pending) (*Guard, error) {
	if input == nil || input.Bucket == nil || input.Key == nil {
		return nil, errors.New("copy input requires a bucket and key")
	}

	_, err := api.CopyObject(ctx, input)
	if err != nil {
		return nil, errors.Errorf("copying %s to %s: %w", sourceKey, aws.ToString(input.Key), err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("from", sourceKey).
		Str("to", aws.ToString(input.Key)).
		Msg("copy complete")

	return &Guard{
		ctx:       ctx,
		api:       api,
		bucket:    aws.ToString(input.Bucket),
		sourceKey: sourceKey,
		pending:   pending,
	}, nil
}

// SourceKey is the key that Close deletes
func (g *Guard) SourceKey() string {
	return g.sourceKey
}

// Close starts the source delete and registers it with the pending set before
// returning. It never blocks on the delete. Only the first call has any effect.
func (g *Guard) Close() *Handle {
	g.once.Do(func() {
		h := newHandle(g.sourceKey)
		g.pending.Add(h)
		g.handle = h

		// the delete outlives the request that started it
		ctx := context.WithoutCancel(g.ctx)
		go func() {
			h.finish(deleteSource(ctx, g.api, g.bucket, g.sourceKey))
		}()
	})
	return g.handle
}

func deleteSource(ctx context.Context, api Copier, bucket, key string) error {
	logger := zerolog.Ctx(ctx)

	_, err := api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		store.LogError(logger.Error(), err).Str("key", key).Msg("failed to delete source object")
		return errors.Errorf("deleting s3://%s/%s: %w", bucket, key, err)
	}

	logger.Debug().Str("key", key).Msg("deleted source object")
	return nil
}
