package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrRegionUnresolved is returned when neither an override nor the bucket provide a region
var ErrRegionUnresolved = errors.Base("could not determine bucket region, please specify with --region")

// ResolveRegion picks the region to talk to bucket in. An explicit override
// wins, then the region the bucket reports. A failed location lookup counts
// as no region.
func ResolveRegion(ctx context.Context, api API, bucket, override string) (string, error) {
	logger := zerolog.Ctx(ctx)

	if override != "" {
		logger.Debug().Str("region", override).Msg("using region override")
		return override, nil
	}

	out, err := api.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: aws.String(bucket)})
	if err != nil {
		logger.Debug().Err(err).Str("bucket", bucket).Msg("bucket location lookup failed")
		return "", errors.Errorf("%w: s3://%s: %s", ErrRegionUnresolved, bucket, err.Error())
	}

	region := NormalizeLocation(string(out.LocationConstraint))
	logger.Debug().Str("bucket", bucket).Str("region", region).Msg("resolved bucket region")
	return region, nil
}

// NormalizeLocation maps a bucket location constraint to a region name.
// Buckets in us-east-1 report an empty constraint and legacy EU buckets
// report "EU".
func NormalizeLocation(constraint string) string {
	switch constraint {
	case "":
		return DefaultRegion
	case "EU":
		return "eu-west-1"
	default:
		return constraint
	}
}
