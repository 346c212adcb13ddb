package identity

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches ten rounds of bcrypt.
const DefaultCost = bcrypt.DefaultCost

// PasswordHasher turns a plaintext password into a one-way, salted hash and
// verifies candidates against it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A malformed hash is a mismatch.
	Verify(plaintext, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt. The cost and salt are
// embedded in every hash, so verification needs no extra state.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher at the given cost. Costs outside the range
// bcrypt accepts fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash generates a fresh salt and hashes plaintext with it.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrInvalidInput
		}
		return "", err
	}
	return string(hash), nil
}

// Verify compares plaintext against hash in constant time.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
