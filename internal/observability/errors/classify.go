// Package errors maps failures onto a small, bounded set of labels for metrics and logs.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"net/url"

	apperrors "github.com/ousseynou98/frontsurete-sub001/internal/errors"
)

// Labels returned for failures that carry no AppError code.
const (
	ClassTransport = "transport"
	ClassUnknown   = "unknown"
)

// Classify returns a normalized error name suitable for tagging metrics/logs.
// Cancellation and deadlines win over everything else; AppErrors classify by code;
// remaining network failures collapse to "timeout" or "transport".
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case goerrors.Is(err, context.Canceled):
		return string(apperrors.ErrCodeCanceled)
	case goerrors.Is(err, context.DeadlineExceeded):
		return string(apperrors.ErrCodeTimeout)
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return string(apperrors.ErrCodeTimeout)
	}
	var urlErr *url.Error
	if goerrors.As(err, &urlErr) || goerrors.As(err, &netErr) {
		return ClassTransport
	}
	return ClassUnknown
}
