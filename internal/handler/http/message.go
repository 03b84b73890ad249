package http

import (
	"net/http"

	"github.com/MKhiriev/go-chat-profiles/internal/utils"
)

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
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

	message, err := h.services.MessageService.Send(r.Context(), profileID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, message, http.StatusCreated)
}

// listMessages requires a conversation_id filter, e.g.
// GET /messages?conversation_id=...&order=-created_at
func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params, err := readQuery(r, messageQuerySchema)
	if err != nil {
		writeError(w, r, err)
		return
	}

	messages, err := h.services.MessageService.List(r.Context(), profileID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeList(w, messages, params)
}

func (h *Handler) getMessage(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message, err := h.services.MessageService.Get(r.Context(), profileID, pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, message, http.StatusOK)
}

func (h *Handler) updateMessage(w http.ResponseWriter, r *http.Request) {
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

	message, err := h.services.MessageService.Update(r.Context(), profileID, pathID(r), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, message, http.StatusOK)
}

func (h *Handler) markMessageDelivered(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message, err := h.services.MessageService.MarkDelivered(r.Context(), profileID, pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, message, http.StatusOK)
}

func (h *Handler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	profileID, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err = h.services.MessageService.Delete(r.Context(), profileID, pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
