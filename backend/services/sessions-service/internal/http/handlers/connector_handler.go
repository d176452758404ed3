package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/models"
	"chargeshare/backend/services/sessions-service/internal/service"
)

// ConnectorHandler serves connector status and configuration.
type ConnectorHandler struct {
	svc    *service.ConnectorService
	logger *zap.Logger
}

// NewConnectorHandler builds handler set.
func NewConnectorHandler(svc *service.ConnectorService, logger *zap.Logger) *ConnectorHandler {
	return &ConnectorHandler{svc: svc, logger: logger}
}

type connectorStatusRequest struct {
	OCPPID          string `json:"ocpp_id"`
	ConnectorNumber int    `json:"connector_number"`
	Status          string `json:"status"`
	ErrorCode       string `json:"error_code"`
}

// Status handles POST /internal/connector-status.
func (h *ConnectorHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req connectorStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	connector, err := h.svc.ReportStatus(r.Context(), service.StatusReport{
		OCPPID:          req.OCPPID,
		ConnectorNumber: req.ConnectorNumber,
		Status:          req.Status,
		ErrorCode:       req.ErrorCode,
	})
	if errors.Is(err, service.ErrChargerNotFound) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored", "reason": "Charger not found"})
		return
	}
	if err != nil {
		respondError(w, h.logger, "connector status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "updated", "connector_id": connector.ID})
}

// Get handles GET /internal/connectors/{id}.
func (h *ConnectorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := h.svc.GetWithLiveStatus(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, "get connector", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Configure handles PATCH /internal/connectors/{id}.
func (h *ConnectorHandler) Configure(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var update models.ConnectorUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	connector, err := h.svc.Configure(r.Context(), id, update)
	if err != nil {
		respondError(w, h.logger, "configure connector", err)
		return
	}
	writeJSON(w, http.StatusOK, connector)
}
