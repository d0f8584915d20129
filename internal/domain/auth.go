package domain

import "time"

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
