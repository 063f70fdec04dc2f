package httpapi

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/service"
)

// ExportHandler streams an event range as CSV or XLSX for offline
// analysis. The window defaults to the last seven days.
type ExportHandler struct {
	query  service.QueryService
	gate   *APIKeyGate
	loc    *time.Location
	logger *zap.Logger
}

func NewExportHandler(query service.QueryService, gate *APIKeyGate, loc *time.Location, logger *zap.Logger) *ExportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportHandler{
		query:  query,
		gate:   gate,
		loc:    loc,
		logger: logger,
	}
}

// Events handles GET /api/export/events?from&to&format=csv|xlsx.
func (h *ExportHandler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.gate.requireRead(w, r) {
		return
	}

	from, ok := parseTimeQuery(w, r, "from", h.loc)
	if !ok {
		return
	}
	to, ok := parseTimeQuery(w, r, "to", h.loc)
	if !ok {
		return
	}

	events, start, end, err := h.query.ExportEvents(r.Context(), from, to)
	if err != nil {
		h.logger.Error("ExportEvents failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := "events_" + start.Format("2006-01-02") + "_" + end.Format("2006-01-02")

	if r.URL.Query().Get("format") == "xlsx" {
		data, err := generateEventExportExcel(events)
		if err != nil {
			h.logger.Error("Excel generation failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename+".xlsx")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename+".csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"local_time", "category", "event_type", "sensor", "room", "severity", "old_value", "new_value", "message"})
	for _, e := range events {
		_ = cw.Write([]string{
			e.LocalTime.Format("2006-01-02 15:04:05-07:00"),
			e.Category,
			e.EventType,
			e.SensorName,
			e.Room,
			strconv.Itoa(e.Severity),
			e.OldValue,
			e.NewValue,
			e.Message,
		})
	}
	cw.Flush()
}
