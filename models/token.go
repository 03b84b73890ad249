package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the claim set of an access token: the registered claims
// (iss, sub = user id, iat, exp) plus the profile id under "pid".
type Claims struct {
	jwt.RegisteredClaims

	// ProfileID is the identifier of the profile bound to the token subject.
	ProfileID string `json:"pid"`
}

// Token wraps a JWT access token with convenience accessors for authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [Claims] for claim access (subject, expiry, profile id).
//
// SignedString holds the compact serialized form of the token (header.payload.signature)
// ready to be transmitted in HTTP headers.
type Token struct {
	// Token is the underlying JWT token used for signing and claim inspection.
	// Excluded from JSON serialization because only the compact string form
	// is meaningful outside the server process.
	*jwt.Token `json:"-"`

	// Claims provides access to the claim set of the token.
	Claims

	// SignedString is the compact JWS representation of the token.
	// Excluded from JSON serialization; use [Token.String] to retrieve it.
	SignedString string `json:"-"`

	// UserID is the owner identifier extracted from the "sub" claim.
	UserID string `json:"-"`
}

// GetUserID extracts the user identifier from the token's "sub" (subject) claim.
//
// Returns an error if the subject claim is missing or empty.
func (t *Token) GetUserID() (string, error) {
	userID, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting UserID from token: %w", err)
	}
	if userID == "" {
		return "", fmt.Errorf("error extracting UserID from token: empty subject")
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}

// TokenPair is what a successful login, registration or refresh hands out.
type TokenPair struct {
	AccessToken *Token

	// RefreshToken is the opaque refresh token in clear text. Only its hash is stored.
	RefreshToken string

	RefreshExpiresAt time.Time
}

// RefreshToken is a stored refresh token: a hash of the opaque value and its owner.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is expired at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Record converts the token into a refresh_tokens row.
func (t RefreshToken) Record() Record {
	return Record{
		"id":         t.ID,
		"user_id":    t.UserID,
		"token_hash": t.TokenHash,
		"expires_at": t.ExpiresAt,
		"created_at": t.CreatedAt,
	}
}

// RefreshTokenFromRecord converts a refresh_tokens row.
func RefreshTokenFromRecord(r Record) RefreshToken {
	return RefreshToken{
		ID:        r.ID(),
		UserID:    r.String("user_id"),
		TokenHash: r.String("token_hash"),
		ExpiresAt: r.Time("expires_at"),
		CreatedAt: r.Time("created_at"),
	}
}
