package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fintrack/fintrack/internal/identity"
)

// Token is a signed access token together with its validity window.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 access tokens carrying a user id as subject.
// Tokens are stateless: nothing is stored and they lapse only by expiry.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer builds an issuer for the shared secret and token lifetime.
func NewIssuer(secret []byte, lifetime time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", lifetime)
	}
	i := &Issuer{secret: secret, lifetime: lifetime, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Lifetime returns the configured validity of new tokens.
func (i *Issuer) Lifetime() time.Duration {
	return i.lifetime
}

// Issue signs {sub, iat, exp} for the user.
func (i *Issuer) Issue(userID identity.UserID) (Token, error) {
	now := i.now()
	exp := now.Add(i.lifetime)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(int64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, IssuedAt: claims.IssuedAt.Time, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify checks signature and expiry and returns the subject. Every failure
// wraps ErrUnauthorized.
func (i *Issuer) Verify(token string) (identity.UserID, error) {
	if token == "" {
		return 0, ErrMissingToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, classify(err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidClaims
	}
	return identity.UserID(id), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	default:
		return ErrInvalidClaims
	}
}
