package opts

import (
	"context"
	"io"

	"github.com/walteh/s3rename/pkg/config"
	"github.com/walteh/s3rename/pkg/store"
)

// APIFactory builds a store client signed for region
type APIFactory func(ctx context.Context, cfg *config.Config, region string) (store.API, error)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// Config is the merged file and flag configuration, set once flags are parsed
	Config *config.Config
	// NewAPI builds store clients, defaults to an S3 client
	NewAPI APIFactory
	// DefaultConfigFile is loaded when present and --config is not given
	DefaultConfigFile string

	Stdout io.Writer
	Stderr io.Writer
}

// S3API is the default APIFactory
func S3API(ctx context.Context, cfg *config.Config, region string) (store.API, error) {
	return store.New(ctx,
		store.WithRegion(region),
		store.WithEndpoint(cfg.Endpoint),
		store.WithPathStyle(cfg.PathStyle),
		store.WithMaxRetries(cfg.MaxRetries),
	)
}
