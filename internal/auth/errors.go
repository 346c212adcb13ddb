package auth

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is the single outward failure of token verification. The
// reasons below wrap it so callers can log the cause without exposing it.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrMissingToken   = fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	ErrMalformedToken = fmt.Errorf("%w: malformed token", ErrUnauthorized)
	ErrBadSignature   = fmt.Errorf("%w: signature mismatch", ErrUnauthorized)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrInvalidClaims  = fmt.Errorf("%w: invalid claims", ErrUnauthorized)
)

// Reason returns a short, stable label for a verification failure, suitable
// for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrBadSignature):
		return "signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrInvalidClaims):
		return "claims"
	default:
		return "unknown"
	}
}
