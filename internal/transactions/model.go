package transactions

import (
	"time"

	"github.com/fintrack/fintrack/internal/identity"
)

// MaxNoteLength mirrors the width of the note column.
const MaxNoteLength = 255

// Transaction is a dated amount recorded by a user. Sum is in minor units and
// may be negative for spending.
type Transaction struct {
	ID     int64
	UserID identity.UserID
	Date   time.Time
	Sum    int64
	Note   string
}

// Input carries the user-supplied fields of a new transaction.
type Input struct {
	Date time.Time
	Sum  int64
	Note string
}

// Filter restricts listings to an inclusive date range. Nil bounds are open.
type Filter struct {
	From *time.Time
	To   *time.Time
}

// Summary aggregates the transactions matched by a Filter.
type Summary struct {
	Count int64
	Total int64
}
