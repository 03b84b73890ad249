package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/service"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/MKhiriev/go-chat-profiles/models"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/profiles"
	tokenType         = "JWT"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	payload, err := readPayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, pair, err := h.services.AuthService.Register(ctx, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Info().Str("profile_id", profile.ID).Msg("profile registered")

	h.setRefreshCookie(w, pair)
	utils.WriteJSON(w, models.RegisterResponse{Profile: profile, TokenResponse: tokenResponse(pair)}, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var credentials models.LoginRequest
	if err := utils.ReadJSON(r, &credentials); err != nil {
		if !errors.Is(err, utils.ErrEmptyBody) {
			err = fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		writeError(w, r, err)
		return
	}

	pair, err := h.services.AuthService.Login(ctx, credentials.Email, credentials.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair)
	utils.WriteJSON(w, tokenResponse(pair), http.StatusOK)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, r, ErrMissingRefreshCookie)
		return
	}

	pair, err := h.services.AuthService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) {
			h.clearRefreshCookie(w)
		}
		writeError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair)
	utils.WriteJSON(w, tokenResponse(pair), http.StatusOK)
}

// logout succeeds without a cookie so clients can always reset their state.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err = h.services.AuthService.Logout(r.Context(), cookie.Value); err != nil {
			writeError(w, r, err)
			return
		}
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		Expires:  pair.RefreshExpiresAt,
		MaxAge:   int(time.Until(pair.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokenResponse(pair models.TokenPair) models.TokenResponse {
	resp := models.TokenResponse{TokenType: tokenType}
	if pair.AccessToken == nil {
		return resp
	}

	resp.AccessToken = pair.AccessToken.SignedString
	if exp, iat := pair.AccessToken.ExpiresAt, pair.AccessToken.IssuedAt; exp != nil && iat != nil {
		resp.ExpiresIn = int64(exp.Sub(iat.Time).Seconds())
	}
	return resp
}
