package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sawpanic/tradegate/internal/admission"
	"github.com/sawpanic/tradegate/internal/history"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse reports service liveness and component states.
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Components    map[string]string `json:"components,omitempty"`
}

// OutcomeAck acknowledges a recorded trade outcome.
type OutcomeAck struct {
	Status    string    `json:"status"`
	AssetType string    `json:"assetType"`
	Timeframe string    `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
}

// Handlers owns all JSON endpoint handlers.
type Handlers struct {
	service *admission.Service
	version string
	started time.Time
	probes  map[string]func() string
}

// NewHandlers creates the handler set around the admission service.
func NewHandlers(service *admission.Service, version string) *Handlers {
	return &Handlers{
		service: service,
		version: version,
		started: time.Now(),
		probes:  make(map[string]func() string),
	}
}

// AddHealthProbe registers a component state probe shown under /health.
func (h *Handlers) AddHealthProbe(name string, probe func() string) {
	h.probes[name] = probe
}

// Gate handles POST /v1/gate: run the full admission pipeline on one result.
func (h *Handlers) Gate(w http.ResponseWriter, r *http.Request) {
	var req admission.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_request_body", err.Error())
		return
	}
	if req.Result == nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_result", "request must include an analysis result")
		return
	}

	record, err := h.service.Process(r.Context(), req)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "gate_failed", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// Calibrate handles POST /v1/calibrate: confidence calibration only.
func (h *Handlers) Calibrate(w http.ResponseWriter, r *http.Request) {
	var req admission.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_request_body", err.Error())
		return
	}
	if req.Result == nil {
		h.writeError(w, r, http.StatusBadRequest, "missing_result", "request must include an analysis result")
		return
	}

	result, err := h.service.Calibrate(req)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "calibration_failed", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Policies handles GET /v1/policies: the active admission policy table.
func (h *Handlers) Policies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Policies())
}

// Outcome handles POST /v1/outcomes: record one concluded trade.
func (h *Handlers) Outcome(w http.ResponseWriter, r *http.Request) {
	var outcome history.Outcome
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&outcome); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_request_body", err.Error())
		return
	}
	if outcome.AssetType == "" || outcome.Timeframe == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing_fields", "asset_type and timeframe are required")
		return
	}

	if err := h.service.RecordOutcome(r.Context(), outcome); err != nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "outcome_rejected", err.Error())
		return
	}
	h.writeJSON(w, http.StatusAccepted, OutcomeAck{
		Status:    "recorded",
		AssetType: outcome.AssetType,
		Timeframe: outcome.Timeframe,
		Timestamp: time.Now().UTC(),
	})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]string, len(h.probes))
	for name, probe := range h.probes {
		components[name] = probe()
	}

	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Components:    components,
	})
}

// NotFound handles 404 responses.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}

// writeJSON writes a JSON response with proper error handling.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

// writeError writes the standardized error response.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: RequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}
