package identity

import (
	"context"
	"errors"
	"fmt"
)

// dummyPassword is hashed once per service so unknown logins still pay for a
// full comparison at the configured cost.
const dummyPassword = "fintrack-timing-equaliser"

// Service registers users and checks their credentials.
type Service struct {
	repo      Repository
	hasher    PasswordHasher
	dummyHash string
}

// NewService creates a new identity service. The comparison hash used for
// unknown logins is computed here, so no login request ever pays for it.
func NewService(repo Repository, hasher PasswordHasher) (*Service, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare login timing hash: %w", err)
	}
	if dummyHash == "" {
		return nil, errors.New("prepare login timing hash: hasher returned an empty hash")
	}
	return &Service{repo: repo, hasher: hasher, dummyHash: dummyHash}, nil
}

// Register hashes the password and stores a new user.
func (s *Service) Register(ctx context.Context, creds Credentials) (UserID, error) {
	if creds.Login == "" || creds.Password == "" {
		return 0, ErrInvalidInput
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return 0, err
		}
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Insert(ctx, creds.Login, hash)
	if err != nil {
		if errors.Is(err, ErrDuplicateLogin) {
			return 0, ErrDuplicateLogin
		}
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return id, nil
}

// Login verifies credentials and returns the matching user id. It never
// creates tokens. An unknown login and a wrong password both yield
// ErrInvalidCredentials after the same amount of hashing work.
func (s *Service) Login(ctx context.Context, creds Credentials) (UserID, error) {
	user, err := s.repo.FindByLogin(ctx, creds.Login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.Verify(creds.Password, s.dummyHash)
			return 0, ErrInvalidCredentials
		}
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if !s.hasher.Verify(creds.Password, user.PasswordHash) {
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}

// Get returns the user behind an authenticated identity.
func (s *Service) Get(ctx context.Context, id UserID) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		return User{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return user, nil
}
