package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/service"
)

// TransactionHandler holds the session lifecycle endpoints invoked by the gateway.
type TransactionHandler struct {
	sessions *service.SessionService
	reaper   *service.Reaper
	logger   *zap.Logger
}

// NewTransactionHandler builds handler set.
func NewTransactionHandler(sessions *service.SessionService, reaper *service.Reaper, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{sessions: sessions, reaper: reaper, logger: logger}
}

type transactionStartRequest struct {
	OCPPID      string     `json:"ocpp_id"`
	ConnectorID int        `json:"connector_id"`
	IDTag       string     `json:"id_tag"`
	MeterStart  int64      `json:"meter_start"`
	Timestamp   *time.Time `json:"timestamp"`
}

type meterValueRequest struct {
	TransactionID int64 `json:"transaction_id"`
	MeterValue    int64 `json:"meter_value"`
}

type transactionStopRequest struct {
	TransactionID int64      `json:"transaction_id"`
	MeterStop     int64      `json:"meter_stop"`
	Timestamp     *time.Time `json:"timestamp"`
}

func timestamp(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Start handles POST /internal/transaction/start.
func (h *TransactionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req transactionStartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OCPPID == "" {
		writeError(w, http.StatusBadRequest, "ocpp_id is required")
		return
	}

	res, err := h.sessions.StartSession(r.Context(), service.StartInput{
		OCPPID:          req.OCPPID,
		ConnectorNumber: req.ConnectorID,
		Tag:             req.IDTag,
		MeterStart:      req.MeterStart,
		Timestamp:       timestamp(req.Timestamp),
	})
	if err != nil {
		respondError(w, h.logger, "start transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":    res.SessionID,
		"transactionId": res.SessionID,
		"rated_power":   res.MaxPowerW,
	})
}

// MeterValues handles POST /internal/transaction/meter-values.
func (h *TransactionHandler) MeterValues(w http.ResponseWriter, r *http.Request) {
	var req meterValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.sessions.ProcessProgress(r.Context(), req.TransactionID, req.MeterValue); err != nil {
		respondError(w, h.logger, "meter values", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Accepted"})
}

// Stop handles POST /internal/transaction/stop.
func (h *TransactionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	var req transactionStopRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.sessions.StopSession(r.Context(), service.StopInput{
		SessionID: req.TransactionID,
		MeterStop: req.MeterStop,
		Timestamp: timestamp(req.Timestamp),
	})
	if err != nil {
		respondError(w, h.logger, "stop transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    session.Status,
		"energy_wh": session.EnergyWh,
		"price":     session.Price.StringFixed(2),
	})
}

// Prune handles POST /internal/transaction/prune.
func (h *TransactionHandler) Prune(w http.ResponseWriter, r *http.Request) {
	maxAge := service.DefaultReapMaxAge
	if raw := r.URL.Query().Get("max_age_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			writeError(w, http.StatusBadRequest, "max_age_minutes must be a positive integer")
			return
		}
		maxAge = time.Duration(minutes) * time.Minute
	}

	count, err := h.reaper.ReapStale(r.Context(), maxAge)
	if err != nil {
		respondError(w, h.logger, "prune transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reaped_count": count,
		"message":      fmt.Sprintf("Cleaned %d stale transactions", count),
	})
}
