package models

import "time"

// User represents an account entity used for authentication.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// ID is the opaque identifier of the user (UUIDv7).
	ID string `json:"id"`

	// Email is the unique login of the user, stored lower-cased.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return UsersTable
}

// UserFromRecord converts a users row into a [User].
func UserFromRecord(r Record) User {
	return User{
		ID:           r.ID(),
		Email:        r.String("email"),
		PasswordHash: r.String("password_hash"),
		CreatedAt:    r.Time("created_at"),
	}
}
