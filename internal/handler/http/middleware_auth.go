package http

import (
	"net/http"
	"strings"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
)

// authScheme is the only scheme accepted in the "Authorization" header.
const authScheme = "JWT"

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// It inspects the incoming "Authorization" header, extracts the access token,
// validates it via [service.AuthService.ParseToken], and on success stores
// the user and profile identifiers in the request context with
// [utils.WithIdentity] before delegating to the next handler.
//
// The middleware rejects requests with HTTP 401 Unauthorized when the header
// is absent or malformed, or when the token is expired or invalid.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Debug().Err(ErrEmptyAuthorizationHeader).Send()
			utils.WriteJSON(w, errorBody(ErrEmptyAuthorizationHeader), http.StatusUnauthorized)
			return
		}

		tokenString, err := getTokenFromAuthHeader(authHeader)
		if err != nil {
			log.Debug().Err(err).Send()
			utils.WriteJSON(w, errorBody(err), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx = utils.WithIdentity(ctx, token.UserID, token.ProfileID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getTokenFromAuthHeader extracts the token from a raw "Authorization" value
// of the form:
//
//	Authorization: JWT eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
//
// The scheme is matched case-insensitively.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	scheme, tokenString, _ := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !strings.EqualFold(scheme, authScheme) {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}

// caller returns the profile id stored by [Handler.auth].
func caller(r *http.Request) (string, error) {
	profileID, ok := utils.GetProfileIDFromContext(r.Context())
	if !ok {
		return "", ErrNoCaller
	}
	return profileID, nil
}
