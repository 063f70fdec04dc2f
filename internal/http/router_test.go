package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"homesentry-data/internal/domain"
	"homesentry-data/internal/repository"
	"homesentry-data/internal/service"
)

func newTestRouter(t *testing.T, gate *APIKeyGate) (*Router, *fakeIngestService) {
	t.Helper()
	logger := zap.NewNop()
	ingest := &fakeIngestService{res: &repository.AppendResult{ID: 42, LocalTime: time.Date(2024, 1, 15, 11, 30, 0, 0, time.UTC)}}
	query := &fakeQueryService{health: &domain.HealthCounts{}}

	r := NewRouter(logger)
	r.RegisterAPIRoutes(
		NewIngestHandler(ingest, gate, logger),
		NewQueryHandler(query, gate, time.UTC, logger),
		NewDashboardHandler(query, gate, time.UTC, logger),
		NewExportHandler(query, gate, time.UTC, logger),
		NewAdminHandler(&fakeAdminService{cleanupRes: &service.CleanupResult{Deleted: map[string]int64{}}}, gate, logger),
		NewSystemHandler(query, time.UTC, "UTC", logger),
	)
	return r, ingest
}

func TestRouterDispatch(t *testing.T) {
	r, ingest := newTestRouter(t, NewAPIKeyGate("", "", ""))

	routes := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, "/api/log/event", `{"sensor_mac":"AA:BB:CC:DD:EE:FF","event_type":"contact_open"}`, http.StatusCreated},
		{http.MethodGet, "/api/events", "", http.StatusOK},
		{http.MethodGet, "/api/climate/AA:BB:CC:DD:EE:FF", "", http.StatusOK},
		{http.MethodGet, "/api/battery/AA:BB:CC:DD:EE:FF", "", http.StatusOK},
		{http.MethodGet, "/api/alarms", "", http.StatusOK},
		{http.MethodGet, "/api/sensors", "", http.StatusOK},
		{http.MethodGet, "/api/bridges", "", http.StatusOK},
		{http.MethodGet, "/api/stats/daily", "", http.StatusOK},
		{http.MethodGet, "/api/dashboard/summary", "", http.StatusOK},
		{http.MethodGet, "/api/export/events", "", http.StatusOK},
		{http.MethodGet, "/api/admin/retention", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/server/time", "", http.StatusOK},
	}

	for _, rt := range routes {
		var req *http.Request
		if rt.body != "" {
			req = httptest.NewRequest(rt.method, rt.path, strings.NewReader(rt.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(rt.method, rt.path, nil)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, rt.status, w.Code, "%s %s", rt.method, rt.path)
	}

	assert.Equal(t, []string{"event"}, ingest.calls)
}

func TestRouterUnknownPath(t *testing.T) {
	r, _ := newTestRouter(t, NewAPIKeyGate("", "", ""))

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
