package http

import (
	"net/http"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/MKhiriev/go-chat-profiles/models"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := models.HealthResponse{
		Status:  statusOK,
		Version: h.services.AppInfoService.GetAppVersion(ctx),
	}

	if err := h.services.AppInfoService.Ping(ctx); err != nil {
		logger.FromRequest(r).Err(err).Msg("store ping failed")
		resp.Status = statusUnavailable
		utils.WriteJSON(w, resp, http.StatusServiceUnavailable)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}
