package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fintrack/fintrack/internal/identity"
)

// Service exposes transaction operations for an authenticated user.
type Service struct {
	repo Repository
}

// NewService builds a transaction service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create records a transaction for the user.
func (s *Service) Create(ctx context.Context, userID identity.UserID, input Input) (Transaction, error) {
	if userID <= 0 {
		return Transaction{}, fmt.Errorf("%w: unknown user", ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return Transaction{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	input.Note = strings.TrimSpace(input.Note)
	if utf8.RuneCountInString(input.Note) > MaxNoteLength {
		return Transaction{}, fmt.Errorf("%w: note exceeds %d characters", ErrInvalidInput, MaxNoteLength)
	}
	input.Date = truncateDay(input.Date)

	return s.repo.Insert(ctx, userID, input)
}

// List returns the user's transactions within the filter.
func (s *Service) List(ctx context.Context, userID identity.UserID, filter Filter) ([]Transaction, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID, filter)
}

// Get returns one of the user's transactions.
func (s *Service) Get(ctx context.Context, userID identity.UserID, id int64) (Transaction, error) {
	if id <= 0 {
		return Transaction{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID, id)
}

// Delete removes one of the user's transactions.
func (s *Service) Delete(ctx context.Context, userID identity.UserID, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, userID, id)
}

// Summary totals the user's transactions within the filter.
func (s *Service) Summary(ctx context.Context, userID identity.UserID, filter Filter) (Summary, error) {
	if err := validateFilter(filter); err != nil {
		return Summary{}, err
	}
	return s.repo.Summarize(ctx, userID, filter)
}

func validateFilter(filter Filter) error {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return fmt.Errorf("%w: from is after to", ErrInvalidInput)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
