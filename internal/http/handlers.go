package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"radmon/internal/domain"
	"radmon/internal/export"
	"radmon/internal/service/compute"

	"go.uber.org/zap"
)

// AlertReader serves alert listing and acknowledgment.
type AlertReader interface {
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]domain.Alert, error)
	Acknowledge(ctx context.Context, alertID string) error
}

// ReadingLister serves readings for export.
type ReadingLister interface {
	ListByDeviceBetween(ctx context.Context, deviceID string, from, to time.Time) ([]domain.Reading, error)
}

// HealthReader serves stored health snapshots.
type HealthReader interface {
	Get(ctx context.Context, deviceID string) (*domain.DeviceHealthSnapshot, error)
}

// AdminHandler HTTP handlers for the admin API.
type AdminHandler struct {
	compute  *compute.ComputeService
	alerts   AlertReader
	readings ReadingLister
	health   HealthReader
	exporter *export.ReadingsExporter
	logger   *zap.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(
	compute *compute.ComputeService,
	alerts AlertReader,
	readings ReadingLister,
	health HealthReader,
	exporter *export.ReadingsExporter,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		compute:  compute,
		alerts:   alerts,
		readings: readings,
		health:   health,
		exporter: exporter,
		logger:   logger,
	}
}

// computeRequest shared body for the compute endpoints. Metric-specific
// fields are ignored by endpoints that do not use them.
type computeRequest struct {
	DeviceID  string    `json:"device_id"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Alpha     float64   `json:"alpha"`
	Threshold float64   `json:"threshold"`
	Limit     float64   `json:"limit"`
	MaxHours  int       `json:"max_hours"`
}

func (h *AdminHandler) decodeComputeRequest(w http.ResponseWriter, r *http.Request, needWindow bool) (*computeRequest, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil, false
	}

	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return nil, false
	}
	if needWindow && !req.From.Before(req.To) {
		writeError(w, http.StatusBadRequest, "from must be before to")
		return nil, false
	}

	return &req, true
}

func (h *AdminHandler) computeCumulative(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComputeRequest(w, r, true)
	if !ok {
		return
	}

	result, err := h.compute.CumulativeDose(r.Context(), req.DeviceID, req.From, req.To)
	if err != nil {
		h.fail(w, "cumulative dose computation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) computeEWMA(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComputeRequest(w, r, true)
	if !ok {
		return
	}

	result, err := h.compute.EWMA(r.Context(), req.DeviceID, req.From, req.To, req.Alpha)
	if err != nil {
		h.fail(w, "ewma computation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) computePeaks(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComputeRequest(w, r, true)
	if !ok {
		return
	}

	result, err := h.compute.Peaks(r.Context(), req.DeviceID, req.From, req.To)
	if err != nil {
		h.fail(w, "peak detection failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) computePredict(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComputeRequest(w, r, true)
	if !ok {
		return
	}
	if req.Threshold <= 0 {
		writeError(w, http.StatusBadRequest, "threshold must be positive")
		return
	}

	result, err := h.compute.PredictThreshold(r.Context(), req.DeviceID, req.From, req.To, req.Threshold)
	if err != nil {
		h.fail(w, "prediction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) computeExposure(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComputeRequest(w, r, true)
	if !ok {
		return
	}
	if req.Limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be positive")
		return
	}

	result, err := h.compute.ExposureScan(r.Context(), req.DeviceID, req.From, req.To, req.Limit, req.MaxHours)
	if err != nil {
		h.fail(w, "exposure scan failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) computeHealth(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComputeRequest(w, r, false)
	if !ok {
		return
	}

	snapshot, err := h.compute.DeviceHealth(r.Context(), req.DeviceID)
	if err != nil {
		h.fail(w, "device health computation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *AdminHandler) listComputed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var deviceID, metricType *string
	if v := r.URL.Query().Get("device_id"); v != "" {
		deviceID = &v
	}
	if v := r.URL.Query().Get("metric_type"); v != "" {
		metricType = &v
	}

	metrics, err := h.compute.ListComputed(r.Context(), deviceID, metricType)
	if err != nil {
		h.fail(w, "failed to list computed metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (h *AdminHandler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	alerts, err := h.alerts.ListByDevice(r.Context(), deviceID, limit)
	if err != nil {
		h.fail(w, "failed to list alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *AdminHandler) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		AlertID string `json:"alert_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AlertID == "" {
		writeError(w, http.StatusBadRequest, "alert_id is required")
		return
	}

	if err := h.alerts.Acknowledge(r.Context(), req.AlertID); err != nil {
		h.fail(w, "failed to acknowledge alert", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alert_id": req.AlertID, "status": "acknowledged"})
}

func (h *AdminHandler) getDeviceHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	snapshot, err := h.health.Get(r.Context(), deviceID)
	if err != nil {
		h.fail(w, "failed to get device health", err)
		return
	}
	if snapshot == nil {
		writeError(w, http.StatusNotFound, "no health snapshot for device")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *AdminHandler) exportReadings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	deviceID := q.Get("device_id")
	if deviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	from, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be RFC3339")
		return
	}

	readings, err := h.readings.ListByDeviceBetween(r.Context(), deviceID, from, to)
	if err != nil {
		h.fail(w, "failed to list readings", err)
		return
	}

	data, err := h.exporter.Export(readings)
	if err != nil {
		h.fail(w, "failed to build export", err)
		return
	}

	filename := fmt.Sprintf("readings-%s.xlsx", from.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *AdminHandler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) fail(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, zap.Error(err))
	writeError(w, http.StatusInternalServerError, message)
}
