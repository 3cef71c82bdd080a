package model

import "time"

// User represents an authenticated principal as stored in the `users` table.
// The mobile number is the login key: unique and immutable once assigned.
// PasswordHash is the opaque credential string hex(key).hex(salt); it is
// never serialized into API responses.
type User struct {
	ID           int64     `json:"id"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session is a server-side record linking an opaque cookie value to a user,
// with an expiry. Expired rows are inert even before they are purged.
type Session struct {
	SID       string
	UserID    int64
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
