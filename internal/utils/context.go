// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, opaque token generation and identifiers.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key used to store the authenticated user identifier in the context.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.UserIDCtxKey, "0190f1d2-...")
var UserIDCtxKey = contextKey("userID")

// ProfileIDCtxKey is the key used to store the profile identifier bound to
// the authenticated user.
var ProfileIDCtxKey = contextKey("profileID")

// GetUserIDFromContext retrieves the user identifier from the context.
//
// Returns the user ID and an ok flag:
//   - ok == true: value is found, is a string and is not empty
//   - ok == false: value is missing, empty or has an unexpected type
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

// GetProfileIDFromContext retrieves the profile identifier from the context.
func GetProfileIDFromContext(ctx context.Context) (string, bool) {
	profileID, ok := ctx.Value(ProfileIDCtxKey).(string)
	return profileID, ok && profileID != ""
}

// WithIdentity stores both identifiers of the authenticated caller.
func WithIdentity(ctx context.Context, userID, profileID string) context.Context {
	ctx = context.WithValue(ctx, UserIDCtxKey, userID)
	return context.WithValue(ctx, ProfileIDCtxKey, profileID)
}
