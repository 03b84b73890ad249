package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-chat-profiles/internal/querycodec"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/MKhiriev/go-chat-profiles/models"
	"github.com/go-chi/chi/v5"
)

// Query schemas of the list endpoints. Only primary-table columns can be
// filtered or sorted on.
var (
	profileQuerySchema = querycodec.Schema{
		"id":           models.KindString,
		"user_id":      models.KindString,
		"display_name": models.KindString,
		"bio":          models.KindString,
		"avatar_url":   models.KindString,
		"category_ids": models.KindList,
		"created_at":   models.KindTime,
		"updated_at":   models.KindTime,
	}

	categoryQuerySchema = querycodec.Schema{
		"id":               models.KindString,
		"label":            models.KindString,
		"conversation_ids": models.KindList,
		"created_at":       models.KindTime,
	}

	conversationQuerySchema = querycodec.Schema{
		"id":              models.KindString,
		"title":           models.KindString,
		"participant_ids": models.KindList,
		"created_at":      models.KindTime,
		"updated_at":      models.KindTime,
	}

	messageQuerySchema = querycodec.Schema{
		"id":              models.KindString,
		"conversation_id": models.KindString,
		"sender_id":       models.KindString,
		"recipient_id":    models.KindString,
		"text":            models.KindString,
		"delivered_at":    models.KindTime,
		"created_at":      models.KindTime,
	}
)

func readPayload(r *http.Request) (models.Payload, error) {
	var payload models.Payload
	if err := utils.ReadJSON(r, &payload); err != nil {
		if errors.Is(err, utils.ErrEmptyBody) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if payload == nil {
		payload = models.Payload{}
	}
	return payload, nil
}

func readQuery(r *http.Request, schema querycodec.Schema) (models.SearchParams, error) {
	return querycodec.Decode(schema, r.URL.Query())
}

func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func writeList[T any](w http.ResponseWriter, items []T, params models.SearchParams) {
	if items == nil {
		items = []T{}
	}
	utils.WriteJSON(w, models.ListResponse[T]{Items: items, Limit: params.Limit, Offset: params.Offset}, http.StatusOK)
}
