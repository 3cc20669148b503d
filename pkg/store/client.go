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

package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultRegion is used to bootstrap a client before the bucket region is known
const DefaultRegion = "us-east-1"

// ClientConfig collects the options New applies
type ClientConfig struct {
	Region     string
	Endpoint   string
	PathStyle  bool
	MaxRetries int
	AWSConfig  *aws.Config
}

// Option configures New
type Option func(*ClientConfig)

// WithRegion sets the region requests are signed for
func WithRegion(region string) Option {
	return func(c *ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint points the client at an S3 compatible endpoint
func WithEndpoint(endpoint string) Option {
	return func(c *ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithPathStyle forces path style addressing, needed by most S3 compatible stores
func WithPathStyle(pathStyle bool) Option {
	return func(c *ClientConfig) {
		c.PathStyle = pathStyle
	}
}

// WithMaxRetries sets the SDK retry attempts, 0 keeps the SDK default
func WithMaxRetries(maxRetries int) Option {
	return func(c *ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithAWSConfig skips loading the default credential chain
func WithAWSConfig(cfg *aws.Config) Option {
	return func(c *ClientConfig) {
		c.AWSConfig = cfg
	}
}

// 🏭 New builds an S3 client from the default credential chain and opts
func New(ctx context.Context, opts ...Option) (*s3.Client, error) {
	clientCfg := &ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	if clientCfg.AWSConfig != nil {
		cfg = clientCfg.AWSConfig.Copy()
	} else {
		var err error
		cfg, err = awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.Errorf("loading aws config: %w", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	zerolog.Ctx(ctx).Debug().
		Str("region", cfg.Region).
		Str("endpoint", clientCfg.Endpoint).
		Bool("path_style", clientCfg.PathStyle).
		Msg("creating s3 client")

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if clientCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		}
		o.UsePathStyle = clientCfg.PathStyle
	}), nil
}
