package config

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidURL is returned for store URLs not of the form s3://bucket/optional-prefix
var ErrInvalidURL = errors.Base("invalid S3 URL, expected format: s3://bucket/optional-key-prefix")

const scheme = "s3://"

var bucketName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// 📦 Location is a bucket and the key prefix to operate under
type Location struct {
	Bucket string
	Prefix string
}

func (l Location) String() string {
	return scheme + l.Bucket + "/" + l.Prefix
}

// ParseLocation parses s3://bucket/optional-prefix
func ParseLocation(raw string) (Location, error) {
	if !strings.HasPrefix(raw, scheme) {
		return Location{}, errors.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(raw, scheme), "/")
	if !bucketName.MatchString(bucket) {
		return Location{}, errors.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	return Location{Bucket: bucket, Prefix: prefix}, nil
}
