package identity

import "time"

// UserID identifies a registered user. It is assigned by the credential store
// and never changes.
type UserID int64

// User is the stored identity record. PasswordHash is never the plaintext.
type User struct {
	ID           UserID
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// Credentials is the login/password pair supplied by a client. It lives only
// for the duration of a request and is never persisted or logged.
type Credentials struct {
	Login    string
	Password string
}
