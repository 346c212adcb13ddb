package transactions

import (
	"context"
	"sort"
	"sync"

	"github.com/fintrack/fintrack/internal/identity"
)

type memoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	storage map[int64]Transaction
}

// NewMemoryRepository constructs an in-memory repository for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[int64]Transaction)}
}

func (r *memoryRepository) Insert(_ context.Context, userID identity.UserID, input Input) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	tx := Transaction{ID: r.nextID, UserID: userID, Date: input.Date, Sum: input.Sum, Note: input.Note}
	r.storage[tx.ID] = tx
	return tx, nil
}

func (r *memoryRepository) List(_ context.Context, userID identity.UserID, filter Filter) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Transaction{}
	for _, tx := range r.storage {
		if tx.UserID == userID && matches(tx, filter) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) Get(_ context.Context, userID identity.UserID, id int64) (Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.storage[id]
	if !ok || tx.UserID != userID {
		return Transaction{}, ErrNotFound
	}
	return tx, nil
}

func (r *memoryRepository) Delete(_ context.Context, userID identity.UserID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.storage[id]
	if !ok || tx.UserID != userID {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}

func (r *memoryRepository) Summarize(ctx context.Context, userID identity.UserID, filter Filter) (Summary, error) {
	txs, err := r.List(ctx, userID, filter)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	for _, tx := range txs {
		total, ok := addInt64(summary.Total, tx.Sum)
		if !ok {
			return Summary{}, ErrTotalOutOfRange
		}
		summary.Count++
		summary.Total = total
	}
	return summary, nil
}

// addInt64 returns a+b and whether the sum stayed within the int64 range.
func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func matches(tx Transaction, filter Filter) bool {
	if filter.From != nil && tx.Date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && tx.Date.After(*filter.To) {
		return false
	}
	return true
}
