package transactions

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing records and records owned by someone else.
	ErrNotFound     = errors.New("transaction not found")
	ErrInvalidInput = errors.New("invalid transaction")
	// ErrTotalOutOfRange reports a summary total outside the int64 range.
	// Narrowing the date range is the remedy, so it is an input error.
	ErrTotalOutOfRange = fmt.Errorf("%w: total exceeds the int64 range, narrow the date range", ErrInvalidInput)
)
