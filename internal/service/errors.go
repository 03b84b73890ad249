package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-chat-profiles/internal/mapper"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
)

var (
	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrRefreshTokenInvalid     = errors.New("refresh token is expired or invalid")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("already exists")
)

// translate lifts store and mapper errors to the service level while keeping
// the original chain for logging.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, mapper.ErrObjectNotFound), errors.Is(err, store.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrRecordAlreadyExists):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
