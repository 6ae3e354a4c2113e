// Package faults classifies pipeline faults and decides how each one is
// handled: retried with backoff, quarantined, alerted, or failed.
package faults

import (
	"context"
	"errors"
	"net"
	"os"

	"firegate/internal/core/domain"
)

// Kind is a closed enumeration of fault categories. Classification branches
// on Kind, never on error strings or type names.
type Kind string

const (
	KindConnectivity   Kind = "connectivity"
	KindAuthentication Kind = "authentication"
	KindPermission     Kind = "permission"
	KindSchema         Kind = "schema"
	KindDataQuality    Kind = "data_quality"
	KindTimeout        Kind = "timeout"
	KindRateLimit      Kind = "rate_limit"
	KindTransient      Kind = "transient"
	KindUnknown        Kind = "unknown"
)

// Error is a fault tagged with its kind. Operations in the pipeline wrap
// their failures in an Error so the classifier stays exhaustive.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the fault kind from an error. Untagged errors fall back to
// a few well-known stdlib conditions, then to KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return KindTimeout
		}
		return KindConnectivity
	}
	return KindUnknown
}

// Classify maps a fault to a severity level. Pure and total: it never errors
// and a nil fault classifies as low.
func Classify(err error) domain.Severity {
	if err == nil {
		return domain.SeverityLow
	}
	switch KindOf(err) {
	case KindConnectivity, KindAuthentication, KindPermission:
		return domain.SeverityCritical
	case KindSchema, KindDataQuality:
		return domain.SeverityHigh
	case KindTimeout, KindRateLimit, KindTransient:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
