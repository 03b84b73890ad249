package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/querycodec"
	"github.com/MKhiriev/go-chat-profiles/internal/service"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/transaction"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
)

// errorStatuses maps sentinel errors to response codes. An error chain may
// carry several sentinels (a store error wrapped by a service error), so the
// first match wins: the most specific causes come first.
var errorStatuses = []struct {
	target error
	status int
}{
	{validators.ErrInvalidInput, http.StatusBadRequest},
	{querycodec.ErrInvalidParam, http.StatusBadRequest},
	{utils.ErrBodyTooLarge, http.StatusRequestEntityTooLarge},
	{ErrInvalidJSON, http.StatusBadRequest},
	{ErrInvalidGzipBody, http.StatusBadRequest},
	{utils.ErrEmptyBody, http.StatusBadRequest},
	{store.ErrInvalidFilter, http.StatusBadRequest},

	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrRefreshTokenInvalid, http.StatusUnauthorized},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
	{ErrMissingRefreshCookie, http.StatusUnauthorized},
	{ErrNoCaller, http.StatusUnauthorized},

	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},

	{service.ErrConflict, http.StatusConflict},
	{store.ErrForeignKeyViolation, http.StatusConflict},

	{ErrRateLimited, http.StatusTooManyRequests},

	{store.ErrStoreUnavailable, http.StatusServiceUnavailable},
}

func statusFromError(err error) int {
	// a failed rollback may leave partial data behind whatever the cause was
	if errors.Is(err, transaction.ErrRollbackFailed) {
		return http.StatusInternalServerError
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and renders it: validation failures as field-keyed
// messages, everything else as {"error": message}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	status := statusFromError(err)

	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Send()
	} else {
		log.Debug().Err(err).Int("status", status).Send()
	}

	var verr *validators.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &verr) {
		utils.WriteJSON(w, models.ValidationErrorResponse{Errors: verr.Fields}, status)
		return
	}

	utils.WriteJSON(w, errorBody(err), status)
}

func errorBody(err error) models.ErrorResponse {
	return models.ErrorResponse{Error: err.Error()}
}
