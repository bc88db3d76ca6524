package handlers

import "context"

type contextKey string

const (
	// UserIDKey holds the authenticated user id
	UserIDKey contextKey = "user_id"
	// UsernameKey holds the authenticated username
	UsernameKey contextKey = "username"
)

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, userID, username string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UsernameKey, username)
}

// GetUserID returns the authenticated user id from ctx
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetUsername returns the authenticated username from ctx
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}
