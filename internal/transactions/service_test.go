package transactions

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fintrack/fintrack/internal/identity"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(t time.Time) *time.Time { return &t }

func TestServiceCreateAndList(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	inputs := []Input{
		{Date: day("2024-03-02"), Sum: -1500, Note: "groceries"},
		{Date: day("2024-03-01"), Sum: 250000, Note: "salary"},
		{Date: day("2024-03-02").Add(15 * time.Hour), Sum: -300, Note: "  coffee  "},
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, 1, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	txs, err := svc.List(ctx, 1, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	if txs[0].Note != "salary" || txs[1].Note != "groceries" || txs[2].Note != "coffee" {
		t.Fatalf("unexpected order %+v", txs)
	}
	if !txs[2].Date.Equal(day("2024-03-02")) {
		t.Fatalf("expected date truncated to the day, got %s", txs[2].Date)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	cases := map[string]Input{
		"missing date": {Sum: 10, Note: "x"},
		"long note":    {Date: day("2024-01-01"), Note: strings.Repeat("n", MaxNoteLength+1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(ctx, 1, in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := svc.Create(ctx, 1, Input{Date: day("2024-01-01"), Note: strings.Repeat("é", MaxNoteLength)}); err != nil {
		t.Fatalf("expected note of %d runes to be accepted: %v", MaxNoteLength, err)
	}
}

func TestServiceIsolatesUsers(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	alice, err := svc.Create(ctx, 1, Input{Date: day("2024-01-01"), Sum: 100, Note: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, 2, Input{Date: day("2024-01-01"), Sum: 200, Note: "bob"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, 2, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound reading another user's record, got %v", err)
	}
	if err := svc.Delete(ctx, 2, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's record, got %v", err)
	}

	bobs, err := svc.List(ctx, 2, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bobs) != 1 || bobs[0].Note != "bob" {
		t.Fatalf("expected only bob's record, got %+v", bobs)
	}

	got, err := svc.Get(ctx, 1, alice.ID)
	if err != nil || got.Note != "alice" {
		t.Fatalf("expected owner to read record, got %+v %v", got, err)
	}
	if err := svc.Delete(ctx, 1, alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, 1, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted record to be gone, got %v", err)
	}
}

func TestServiceSummaryWithRange(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	for _, in := range []Input{
		{Date: day("2024-01-31"), Sum: 1000},
		{Date: day("2024-02-01"), Sum: -250},
		{Date: day("2024-02-29"), Sum: -50},
		{Date: day("2024-03-01"), Sum: 7},
	} {
		if _, err := svc.Create(ctx, 1, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	summary, err := svc.Summary(ctx, 1, Filter{From: ptr(day("2024-02-01")), To: ptr(day("2024-02-29"))})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != 2 || summary.Total != -300 {
		t.Fatalf("expected {2 -300}, got %+v", summary)
	}

	if _, err := svc.Summary(ctx, 1, Filter{From: ptr(day("2024-03-01")), To: ptr(day("2024-02-01"))}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected inverted range to be rejected, got %v", err)
	}
}

func TestServiceRejectsNonPositiveIDs(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.Get(context.Background(), identity.UserID(1), 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceSummaryReportsOverflow(t *testing.T) {
	ctx := context.Background()

	for name, sums := range map[string][]int64{
		"positive": {math.MaxInt64, 1},
		"negative": {math.MinInt64, -1},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(NewMemoryRepository())
			for _, sum := range sums {
				if _, err := svc.Create(ctx, 1, Input{Date: day("2024-01-01"), Sum: sum}); err != nil {
					t.Fatalf("create: %v", err)
				}
			}
			if _, err := svc.Summary(ctx, 1, Filter{}); !errors.Is(err, ErrTotalOutOfRange) || !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrTotalOutOfRange, got %v", err)
			}
		})
	}

	svc := NewService(NewMemoryRepository())
	for _, sum := range []int64{math.MaxInt64, -1, 1} {
		if _, err := svc.Create(ctx, 1, Input{Date: day("2024-01-01"), Sum: sum}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	summary, err := svc.Summary(ctx, 1, Filter{})
	if err != nil || summary.Total != math.MaxInt64 {
		t.Fatalf("expected total at the int64 bound, got %+v %v", summary, err)
	}
}
