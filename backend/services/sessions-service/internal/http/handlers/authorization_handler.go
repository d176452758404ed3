package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/service"
)

// AuthorizationHandler serves tag authorization for the gateway.
type AuthorizationHandler struct {
	svc    *service.AuthorizationService
	logger *zap.Logger
}

// NewAuthorizationHandler builds handler set.
func NewAuthorizationHandler(svc *service.AuthorizationService, logger *zap.Logger) *AuthorizationHandler {
	return &AuthorizationHandler{svc: svc, logger: logger}
}

type authorizeRequest struct {
	IDTag string `json:"id_tag"`
}

type idTagInfo struct {
	Status string `json:"status"`
}

// Authorize handles POST /internal/authorize/{ocppID}.
func (h *AuthorizationHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.IDTag) == "" {
		writeError(w, http.StatusBadRequest, "id_tag is required")
		return
	}

	status, err := h.svc.Authorize(r.Context(), r.PathValue("ocppID"), req.IDTag)
	if err != nil {
		respondError(w, h.logger, "authorize", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]idTagInfo{"idTagInfo": {Status: string(status)}})
}

// PendingTag handles GET /internal/authorized-tag/{ocppID}.
func (h *AuthorizationHandler) PendingTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.svc.GetPendingAuthorization(r.Context(), r.PathValue("ocppID"))
	if err != nil {
		respondError(w, h.logger, "read authorized tag", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id_tag": tag})
}
