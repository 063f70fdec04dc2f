package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/service"
)

// SystemHandler serves the unauthenticated bootstrap endpoints.
// Devices call these before they can authenticate: health for
// monitoring, server time for clock sync after cold boot.
type SystemHandler struct {
	query    service.QueryService
	loc      *time.Location
	timezone string
	logger   *zap.Logger
}

func NewSystemHandler(query service.QueryService, loc *time.Location, timezone string, logger *zap.Logger) *SystemHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SystemHandler{
		query:    query,
		loc:      loc,
		timezone: timezone,
		logger:   logger,
	}
}

// Health handles GET /api/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	counts, err := h.query.Health(r.Context())
	if err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"database":       "connected",
		"timezone":       h.timezone,
		"total_events":   counts.TotalEvents,
		"total_sensors":  counts.TotalSensors,
		"sensors_online": counts.SensorsOnline,
		"server_time":    time.Now().In(h.loc).Format(time.RFC3339),
	})
}

// ServerTime handles GET /api/server/time.
func (h *SystemHandler) ServerTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	now := time.Now().In(h.loc)
	writeJSON(w, http.StatusOK, map[string]any{
		"iso":      now.Format(time.RFC3339),
		"unix":     now.Unix(),
		"timezone": h.timezone,
	})
}
