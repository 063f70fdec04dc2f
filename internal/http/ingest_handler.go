package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/domain"
	"homesentry-data/internal/repository"
	"homesentry-data/internal/service"
)

// IngestHandler owns the write surface under /api/log/. Every route
// requires the write tier and answers 201 with the assigned id and
// authoritative local_time; the sensor-state merge path answers 200
// without an id because nothing was appended.
type IngestHandler struct {
	ingest service.IngestService
	gate   *APIKeyGate
	logger *zap.Logger
}

func NewIngestHandler(ingest service.IngestService, gate *APIKeyGate, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		ingest: ingest,
		gate:   gate,
		logger: logger,
	}
}

func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.gate.requireWrite(w, r) {
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/log/") {
	case "event":
		h.logEvent(w, r)
	case "climate":
		h.logClimate(w, r)
	case "battery":
		h.logBattery(w, r)
	case "alarm":
		h.logAlarm(w, r)
	case "state":
		h.logBridgeState(w, r)
	case "metrics":
		h.logMetrics(w, r)
	case "sensor-state":
		h.sensorState(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *IngestHandler) logEvent(w http.ResponseWriter, r *http.Request) {
	var rep domain.EventReport
	if err := readJSON(r, &rep); err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := h.ingest.LogEvent(r.Context(), &rep)
	if err != nil {
		h.respondError(w, "LogEvent", err)
		return
	}
	writeAppended(w, res)
}

func (h *IngestHandler) logClimate(w http.ResponseWriter, r *http.Request) {
	var rep domain.ClimateReport
	if err := readJSON(r, &rep); err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := h.ingest.LogClimate(r.Context(), &rep)
	if err != nil {
		h.respondError(w, "LogClimate", err)
		return
	}
	writeAppended(w, res)
}

func (h *IngestHandler) logBattery(w http.ResponseWriter, r *http.Request) {
	var rep domain.BatteryReport
	if err := readJSON(r, &rep); err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := h.ingest.LogBattery(r.Context(), &rep)
	if err != nil {
		h.respondError(w, "LogBattery", err)
		return
	}
	writeAppended(w, res)
}

func (h *IngestHandler) logAlarm(w http.ResponseWriter, r *http.Request) {
	var rep domain.AlarmReport
	if err := readJSON(r, &rep); err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := h.ingest.LogAlarm(r.Context(), &rep)
	if err != nil {
		h.respondError(w, "LogAlarm", err)
		return
	}
	writeAppended(w, res)
}

func (h *IngestHandler) logBridgeState(w http.ResponseWriter, r *http.Request) {
	var rep domain.BridgeStateReport
	raw, err := readRawJSON(r, &rep)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	rep.Raw = raw

	res, err := h.ingest.LogBridgeState(r.Context(), &rep)
	if err != nil {
		h.respondError(w, "LogBridgeState", err)
		return
	}
	writeAppended(w, res)
}

func (h *IngestHandler) logMetrics(w http.ResponseWriter, r *http.Request) {
	var rep domain.MetricsReport
	if err := readJSON(r, &rep); err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := h.ingest.LogMetrics(r.Context(), &rep)
	if err != nil {
		h.respondError(w, "LogMetrics", err)
		return
	}
	writeAppended(w, res)
}

func (h *IngestHandler) sensorState(w http.ResponseWriter, r *http.Request) {
	var rep domain.SensorStateReport
	raw, err := readRawJSON(r, &rep)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	rep.Raw = raw

	res, err := h.ingest.SensorState(r.Context(), &rep)
	if err != nil {
		h.respondError(w, "SensorState", err)
		return
	}
	if res == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	writeAppended(w, res)
}

func (h *IngestHandler) respondError(w http.ResponseWriter, op string, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Msg)
		return
	}
	h.logger.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeAppended(w http.ResponseWriter, res *repository.AppendResult) {
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"id":         res.ID,
		"local_time": res.LocalTime.Format(time.RFC3339),
	})
}

func writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "No JSON data")
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON payload")
}
