package store

import (
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// APIErrorCode extracts the service error code from err, if any
func APIErrorCode(err error) (string, bool) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode(), true
	}
	return "", false
}

// IsNotFound reports whether err is a missing key or bucket
func IsNotFound(err error) bool {
	code, ok := APIErrorCode(err)
	if !ok {
		return false
	}
	switch code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return true
	}
	return false
}

// LogError attaches err and, for service errors, its code and fault to ev
func LogError(ev *zerolog.Event, err error) *zerolog.Event {
	ev = ev.Err(err)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		ev = ev.Str("code", apiErr.ErrorCode()).Str("fault", apiErr.ErrorFault().String())
	}
	return ev
}
