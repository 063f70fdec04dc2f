package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/repository"
	"homesentry-data/internal/service"
	"homesentry-data/internal/timeparse"
)

// QueryHandler owns the read surface: event log queries, per-device
// history, registry listings and daily aggregates.
type QueryHandler struct {
	query  service.QueryService
	gate   *APIKeyGate
	loc    *time.Location
	logger *zap.Logger
}

func NewQueryHandler(query service.QueryService, gate *APIKeyGate, loc *time.Location, logger *zap.Logger) *QueryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &QueryHandler{
		query:  query,
		gate:   gate,
		loc:    loc,
		logger: logger,
	}
}

// Events handles GET /api/events.
// Filters: sensor, room, category, event_type, severity, from, to;
// paging: limit, offset.
func (h *QueryHandler) Events(w http.ResponseWriter, r *http.Request) {
	if !h.allowGET(w, r) {
		return
	}

	limit, _ := parseIntQuery(r, "limit", 0)
	offset, _ := parseIntQuery(r, "offset", 0)

	q := service.EventsQuery{
		Sensor:    r.URL.Query().Get("sensor"),
		Room:      r.URL.Query().Get("room"),
		Category:  r.URL.Query().Get("category"),
		EventType: r.URL.Query().Get("event_type"),
		Limit:     limit,
		Offset:    offset,
	}

	if s := r.URL.Query().Get("severity"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'severity' value")
			return
		}
		q.Severity = &v
	}

	var ok bool
	if q.From, ok = parseTimeQuery(w, r, "from", h.loc); !ok {
		return
	}
	if q.To, ok = parseTimeQuery(w, r, "to", h.loc); !ok {
		return
	}

	page, err := h.query.Events(r.Context(), q)
	if err != nil {
		h.respondError(w, "Events", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
		"events": page.Events,
	})
}

// ClimateHistory handles GET /api/climate/{mac}?hours=24.
func (h *QueryHandler) ClimateHistory(w http.ResponseWriter, r *http.Request) {
	if !h.allowGET(w, r) {
		return
	}
	mac, ok := macFromPath(w, r, "/api/climate/")
	if !ok {
		return
	}
	hours, _ := parseIntQuery(r, "hours", 24)

	readings, err := h.query.ClimateHistory(r.Context(), mac, hours)
	if err != nil {
		h.respondError(w, "ClimateHistory", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sensor_mac": mac,
		"hours":      hours,
		"readings":   readings,
	})
}

// BatteryHistory handles GET /api/battery/{mac}?days=7.
func (h *QueryHandler) BatteryHistory(w http.ResponseWriter, r *http.Request) {
	if !h.allowGET(w, r) {
		return
	}
	mac, ok := macFromPath(w, r, "/api/battery/")
	if !ok {
		return
	}
	days, _ := parseIntQuery(r, "days", 7)

	readings, err := h.query.BatteryHistory(r.Context(), mac, days)
	if err != nil {
		h.respondError(w, "BatteryHistory", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_mac": mac,
		"days":       days,
		"readings":   readings,
	})
}

// Alarms handles GET /api/alarms?limit=100.
func (h *QueryHandler) Alarms(w http.ResponseWriter, r *http.Request) {
	if !h.allowGET(w, r) {
		return
	}
	limit, _ := parseIntQuery(r, "limit", 0)

	events, err := h.query.Alarms(r.Context(), limit)
	if err != nil {
		h.respondError(w, "Alarms", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Sensors handles GET /api/sensors.
func (h *QueryHandler) Sensors(w http.ResponseWriter, r *http.Request) {
	if !h.allowGET(w, r) {
		return
	}

	sensors, err := h.query.Sensors(r.Context())
	if err != nil {
		h.respondError(w, "Sensors", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors})
}

// SensorDetail handles GET /api/sensors/{mac}.
func (h *QueryHandler) SensorDetail(w http.ResponseWriter, r *http.Request) {
	if !h.allowGET(w, r) {
		return
	}
	mac, ok := macFromPath(w, r, "/api/sensors/")
	if !ok {
		return
	}

	detail, err := h.query.SensorDetail(r.Context(), mac)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Sensor not found")
		return
	}
	if err != nil {
		h.respondError(w, "SensorDetail", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sensor":          detail.Sensor,
		"recent_events":   detail.RecentEvents,
		"climate_history": detail.ClimateHistory,
		"battery_history": detail.BatteryHistory,
	})
}

// Bridges handles GET /api/bridges.
func (h *QueryHandler) Bridges(w http.ResponseWriter, r *http.Request) {
	if !h.allowGET(w, r) {
		return
	}

	bridges, err := h.query.Bridges(r.Context())
	if err != nil {
		h.respondError(w, "Bridges", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bridges": bridges})
}

// DailyStats handles GET /api/stats/daily?days=7.
func (h *QueryHandler) DailyStats(w http.ResponseWriter, r *http.Request) {
	if !h.allowGET(w, r) {
		return
	}
	days, _ := parseIntQuery(r, "days", 0)

	stats, err := h.query.DailyStats(r.Context(), days)
	if err != nil {
		h.respondError(w, "DailyStats", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":               stats.Days,
		"events_by_category": stats.EventsByCategory,
		"climate_by_room":    stats.ClimateByRoom,
		"contact_activity":   stats.ContactActivity,
	})
}

func (h *QueryHandler) allowGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return h.gate.requireRead(w, r)
}

// parseTimeQuery parses an optional timestamp parameter. A present
// but unparseable value is a client error, not a silent "no filter".
func parseTimeQuery(w http.ResponseWriter, r *http.Request, name string, loc *time.Location) (*time.Time, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, true
	}
	t := timeparse.Normalize(s, loc)
	if t == nil {
		writeError(w, http.StatusBadRequest, "invalid '"+name+"' timestamp")
		return nil, false
	}
	return t, true
}

func (h *QueryHandler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func macFromPath(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	mac := strings.TrimPrefix(r.URL.Path, prefix)
	if mac == "" || strings.Contains(mac, "/") {
		w.WriteHeader(http.StatusNotFound)
		return "", false
	}
	return mac, true
}
