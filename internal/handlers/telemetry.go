package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Barton98/Energy-management-system/internal/alerts"
	"github.com/Barton98/Energy-management-system/internal/metrics"
	"github.com/Barton98/Energy-management-system/internal/models"
	"github.com/Barton98/Energy-management-system/internal/store"
)

// TelemetryHandler serves the telemetry ingestion endpoints. All state
// lives in the injected store; the handler itself only keeps counters.
type TelemetryHandler struct {
	store  *store.Store
	engine *alerts.Engine

	maxBodySize int64
	startedAt   time.Time

	// Per-process ingest counters for /stats
	accepted atomic.Uint64
	rejected atomic.Uint64
}

// Config holds configuration for the telemetry handler
type Config struct {
	Store       *store.Store
	Engine      *alerts.Engine
	MaxBodySize int64
}

// New creates a telemetry handler.
func New(cfg Config) *TelemetryHandler {
	maxBodySize := cfg.MaxBodySize
	if maxBodySize == 0 {
		maxBodySize = 1 << 20 // 1MB default
	}

	engine := cfg.Engine
	if engine == nil {
		engine = alerts.NewEngine()
	}

	return &TelemetryHandler{
		store:       cfg.Store,
		engine:      engine,
		maxBodySize: maxBodySize,
		startedAt:   time.Now(),
	}
}

// AckResponse acknowledges a single accepted reading.
type AckResponse struct {
	Result string `json:"result"`
}

// BatchResponse reports how many readings a batch committed.
type BatchResponse struct {
	Processed int `json:"processed"`
}

// ErrorResponse carries a validation failure back to the caller.
type ErrorResponse struct {
	Error *models.FieldError `json:"error"`
}

// HealthResponse reports service liveness and current counts.
type HealthResponse struct {
	Status         string `json:"status"`
	TelemetryCount int    `json:"telemetry_count"`
	AlertsCount    int    `json:"alerts_count"`
}

// StatsResponse reports per-process ingest statistics.
type StatsResponse struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	TelemetryCount int     `json:"telemetry_count"`
	AlertsCount    int     `json:"alerts_count"`
	Accepted       uint64  `json:"accepted"`
	Rejected       uint64  `json:"rejected"`
}

// HandleSubmit accepts one reading: validate fully, then commit the
// append and any alert the rule raises.
func (h *TelemetryHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var reading models.Reading
	if err := json.Unmarshal(body, &reading); err != nil {
		h.reject(w, decodeError(err))
		return
	}

	reading.Normalize()
	if err := reading.Validate(); err != nil {
		h.reject(w, err.(*models.FieldError))
		return
	}

	alert := h.engine.Evaluate(&reading)
	h.store.Append(reading, alert)

	h.accepted.Add(1)
	metrics.ReadingsTotal.WithLabelValues("accepted").Inc()
	if alert != nil {
		metrics.AlertsRaised.Inc()
	}

	h.writeJSON(w, http.StatusOK, AckResponse{Result: "ok"})
}

// HandleSubmitBatch accepts an ordered batch of readings. The batch is
// all-or-nothing: every element is validated before anything is
// committed, and one invalid element rejects the whole payload.
func (h *TelemetryHandler) HandleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var readings []models.Reading
	if err := json.Unmarshal(body, &readings); err != nil {
		h.reject(w, decodeError(err))
		return
	}

	for i := range readings {
		readings[i].Normalize()
		if err := readings[i].Validate(); err != nil {
			fieldErr := err.(*models.FieldError)
			h.rejectN(w, len(readings), &models.FieldError{
				Field:  fmt.Sprintf("[%d].%s", i, fieldErr.Field),
				Reason: fieldErr.Reason,
			})
			return
		}
	}

	// Whole batch valid: evaluate alerts in batch order, then commit
	// everything in one store transaction.
	alertsByDevice := make(map[string][]models.Alert)
	raised := 0
	for i := range readings {
		if alert := h.engine.Evaluate(&readings[i]); alert != nil {
			deviceID := readings[i].DeviceID
			alertsByDevice[deviceID] = append(alertsByDevice[deviceID], *alert)
			raised++
		}
	}
	h.store.AppendBatch(readings, alertsByDevice)

	h.accepted.Add(uint64(len(readings)))
	metrics.ReadingsTotal.WithLabelValues("accepted").Add(float64(len(readings)))
	metrics.BatchSize.Observe(float64(len(readings)))
	if raised > 0 {
		metrics.AlertsRaised.Add(float64(raised))
	}

	h.writeJSON(w, http.StatusOK, BatchResponse{Processed: len(readings)})
}

// HandleDeviceAlerts returns every alert recorded for a device, in
// insertion order. Devices with no alerts yield an empty array.
func (h *TelemetryHandler) HandleDeviceAlerts(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	h.writeJSON(w, http.StatusOK, h.store.AlertsFor(deviceID))
}

// HandleHealth reports liveness and current in-memory counts. The
// service has no dependencies to probe, so it always reports healthy.
func (h *TelemetryHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	readings, alertCount := h.store.Counts()
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "healthy",
		TelemetryCount: readings,
		AlertsCount:    alertCount,
	})
}

// HandleStats returns per-process ingest statistics.
func (h *TelemetryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	readings, alertCount := h.store.Counts()
	h.writeJSON(w, http.StatusOK, StatsResponse{
		UptimeSeconds:  time.Since(h.startedAt).Seconds(),
		TelemetryCount: readings,
		AlertsCount:    alertCount,
		Accepted:       h.accepted.Load(),
		Rejected:       h.rejected.Load(),
	})
}

// readBody reads the request body with the configured size limit.
func (h *TelemetryHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: models.NewFieldError("body", "request body too large"),
		})
		return nil, false
	}
	return body, true
}

func (h *TelemetryHandler) reject(w http.ResponseWriter, err *models.FieldError) {
	h.rejectN(w, 1, err)
}

func (h *TelemetryHandler) rejectN(w http.ResponseWriter, n int, err *models.FieldError) {
	h.rejected.Add(uint64(n))
	metrics.ReadingsTotal.WithLabelValues("rejected").Add(float64(n))
	metrics.ValidationErrors.WithLabelValues(err.Field).Inc()
	h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err})
}

func (h *TelemetryHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeError maps a JSON decode failure to a FieldError. Type
// mismatches name the offending field and the type it should have been;
// anything else is reported against the body as a whole.
func decodeError(err error) *models.FieldError {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return models.NewFieldError(field, fmt.Sprintf("must be of type %s, got %s", typeErr.Type, typeErr.Value))
	}
	return models.NewFieldError("body", "invalid JSON payload")
}
