package models

import "time"

// User is a credential record for one account.
// PasswordHash is a bcrypt hash; the plaintext password is never stored.
type User struct {
	ID           string    `json:"id"` // UUID
	Username     string    `json:"username"`
	FullName     string    `json:"full_name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken is the server-side record of one refresh token.
// Only the SHA-256 hash of the token is persisted; the plaintext value
// exists solely in the response that issued it.
type RefreshToken struct {
	ID        string    `json:"id"` // UUID
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// Expired reports whether the record's expiry has passed at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Active reports whether the record may still be rotated: not revoked and
// not expired. A row that fails this check is treated exactly like a
// missing one by the auth flow.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && !t.Expired(now)
}
