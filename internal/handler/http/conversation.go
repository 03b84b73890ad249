package http

import (
	"net/http"

	"github.com/MKhiriev/go-chat-profiles/internal/utils"
)

func (h *Handler) createConversation(w http.ResponseWriter, r *http.Request) {
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

	conversation, err := h.services.ConversationService.Create(r.Context(), profileID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, conversation, http.StatusCreated)
}

func (h *Handler) listConversations(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params, err := readQuery(r, conversationQuerySchema)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conversations, err := h.services.ConversationService.List(r.Context(), profileID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeList(w, conversations, params)
}

func (h *Handler) getConversation(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.services.ConversationService.Get(r.Context(), profileID, pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, view, http.StatusOK)
}

func (h *Handler) updateConversation(w http.ResponseWriter, r *http.Request) {
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

	conversation, err := h.services.ConversationService.Update(r.Context(), profileID, pathID(r), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, conversation, http.StatusOK)
}

func (h *Handler) deleteConversation(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err = h.services.ConversationService.Delete(r.Context(), profileID, pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
