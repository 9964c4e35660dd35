package handlers

import "context"

// contextKey is the type for request context keys
type contextKey string

const (
	// UserIDKey holds the authenticated user's ID in the request context
	UserIDKey contextKey = "user_id"
	// IsAdminKey holds the authenticated user's admin flag
	IsAdminKey contextKey = "is_admin"
)

// GetUserID extracts the authenticated user ID from the request context.
// The second result is false for anonymous requests.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetIsAdmin extracts the admin flag from the request context
func GetIsAdmin(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(IsAdminKey).(bool)
	return ok && isAdmin
}
