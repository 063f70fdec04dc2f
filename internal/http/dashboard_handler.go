package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/service"
)

// DashboardHandler serves the pre-bundled overview queries the web
// dashboard polls.
type DashboardHandler struct {
	query  service.QueryService
	gate   *APIKeyGate
	loc    *time.Location
	logger *zap.Logger
}

func NewDashboardHandler(query service.QueryService, gate *APIKeyGate, loc *time.Location, logger *zap.Logger) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{
		query:  query,
		gate:   gate,
		loc:    loc,
		logger: logger,
	}
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.gate.requireRead(w, r) {
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/dashboard/") {
	case "summary":
		h.summary(w, r)
	case "recent-activity":
		h.recentActivity(w, r)
	case "climate-current":
		h.currentClimate(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.query.DashboardSummary(r.Context())
	if err != nil {
		h.respondError(w, "DashboardSummary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *DashboardHandler) recentActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := parseIntQuery(r, "limit", 0)

	events, err := h.query.RecentActivity(r.Context(), limit)
	if err != nil {
		h.respondError(w, "RecentActivity", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *DashboardHandler) currentClimate(w http.ResponseWriter, r *http.Request) {
	readings, err := h.query.CurrentClimate(r.Context())
	if err != nil {
		h.respondError(w, "CurrentClimate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"readings":  readings,
		"timestamp": time.Now().In(h.loc).Format(time.RFC3339),
	})
}

func (h *DashboardHandler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}
