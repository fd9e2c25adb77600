package models

import "time"

// User represents a user in the system.
type User struct {
	Username string `json:"username" badgerhold:"key"`
	Email    string `json:"email"`
	Password string `json:"password"` // bcrypt hash
	Role     string `json:"role"`
}

// Session represents a user session.
type Session struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
