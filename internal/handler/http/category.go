package http

import (
	"net/http"

	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.services.CategoryService.Create(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, category, http.StatusCreated)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	params, err := readQuery(r, categoryQuerySchema)
	if err != nil {
		writeError(w, r, err)
		return
	}

	categories, err := h.services.CategoryService.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeList(w, categories, params)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.services.CategoryService.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, category, http.StatusOK)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.services.CategoryService.Update(r.Context(), pathID(r), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, category, http.StatusOK)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.services.CategoryService.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addConversationToCategory(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.services.CategoryService.AddConversation(r.Context(), profileID, pathID(r), chi.URLParam(r, "conversationID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, category, http.StatusOK)
}

func (h *Handler) removeConversationFromCategory(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.services.CategoryService.RemoveConversation(r.Context(), profileID, pathID(r), chi.URLParam(r, "conversationID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, category, http.StatusOK)
}
