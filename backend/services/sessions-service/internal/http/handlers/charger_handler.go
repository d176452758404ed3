package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/models"
	"chargeshare/backend/services/sessions-service/internal/service"
)

// ChargerHandler serves presence and handshake endpoints.
type ChargerHandler struct {
	svc    *service.ChargerService
	logger *zap.Logger
}

// NewChargerHandler builds handler set.
func NewChargerHandler(svc *service.ChargerService, logger *zap.Logger) *ChargerHandler {
	return &ChargerHandler{svc: svc, logger: logger}
}

// Heartbeat handles POST /internal/heartbeat/{ocppID}.
func (h *ChargerHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	now, err := h.svc.Heartbeat(r.Context(), r.PathValue("ocppID"))
	if err != nil {
		respondError(w, h.logger, "heartbeat", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"currentTime": now.Format(time.RFC3339)})
}

// Online handles GET /internal/charger/online/{ocppID}.
func (h *ChargerHandler) Online(w http.ResponseWriter, r *http.Request) {
	online, err := h.svc.IsOnline(r.Context(), r.PathValue("ocppID"))
	if err != nil {
		respondError(w, h.logger, "charger online", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"online": online})
}

// Boot handles POST /internal/boot-notification/{ocppID}.
func (h *ChargerHandler) Boot(w http.ResponseWriter, r *http.Request) {
	var info models.TechnicalInfo
	if err := decodeJSON(w, r, &info); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	charger, err := h.svc.RecordBoot(r.Context(), r.PathValue("ocppID"), info)
	if errors.Is(err, service.ErrChargerNotFound) {
		writeError(w, http.StatusNotFound, "Charger not registered")
		return
	}
	if err != nil {
		respondError(w, h.logger, "boot notification", err)
		return
	}
	writeJSON(w, http.StatusOK, charger)
}

// Exists handles GET /internal/charger/exists/{ocppID}.
func (h *ChargerHandler) Exists(w http.ResponseWriter, r *http.Request) {
	availability, err := h.svc.CheckAvailability(r.Context(), r.PathValue("ocppID"))
	if err != nil {
		respondError(w, h.logger, "charger exists", err)
		return
	}
	if !availability.Usable {
		writeError(w, http.StatusForbidden, "Charger is disabled")
		return
	}
	writeJSON(w, http.StatusOK, availability)
}
