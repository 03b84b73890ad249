package http

import (
	"net/http"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	params, err := readQuery(r, profileQuerySchema)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profiles, err := h.services.ProfileService.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeList(w, profiles, params)
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.services.ProfileService.Get(r.Context(), profileID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.services.ProfileService.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload, err := readPayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.services.ProfileService.Update(r.Context(), profileID, pathID(r), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK)
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err = h.services.ProfileService.Delete(r.Context(), profileID, pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Str("profile_id", profileID).Msg("profile deleted")

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) linkCategory(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.services.ProfileService.LinkCategory(r.Context(), profileID, pathID(r), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK)
}

func (h *Handler) unlinkCategory(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := h.services.ProfileService.UnlinkCategory(r.Context(), profileID, pathID(r), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK)
}
