package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"homesentry-data/internal/domain"
)

func TestHealthHealthy(t *testing.T) {
	svc := &fakeQueryService{
		health: &domain.HealthCounts{TotalEvents: 4200, TotalSensors: 10, SensorsOnline: 9},
	}
	h := NewSystemHandler(svc, time.UTC, "UTC", zap.NewNop())

	// No API key: health is reachable before a device can authenticate.
	w := getPath(t, h.Health, "/api/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "UTC", body["timezone"])
	assert.Equal(t, float64(4200), body["total_events"])
	assert.Equal(t, float64(9), body["sensors_online"])

	serverTime, ok := body["server_time"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, serverTime)
	assert.NoError(t, err)
}

func TestHealthUnhealthy(t *testing.T) {
	svc := &fakeQueryService{healthErr: errors.New("dial tcp: connection refused")}
	h := NewSystemHandler(svc, time.UTC, "UTC", zap.NewNop())

	w := getPath(t, h.Health, "/api/health", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Contains(t, body["error"], "connection refused")
}

func TestServerTimeShape(t *testing.T) {
	h := NewSystemHandler(&fakeQueryService{}, time.UTC, "UTC", zap.NewNop())

	before := time.Now().Unix()
	w := getPath(t, h.ServerTime, "/api/server/time", "")
	after := time.Now().Unix()

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "UTC", body["timezone"])

	unix := int64(body["unix"].(float64))
	assert.GreaterOrEqual(t, unix, before)
	assert.LessOrEqual(t, unix, after)

	iso, ok := body["iso"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339, iso)
	require.NoError(t, err)
	assert.Equal(t, unix, parsed.Unix())
}

func TestServerTimeUsesConfiguredZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	h := NewSystemHandler(&fakeQueryService{}, loc, "America/New_York", zap.NewNop())

	w := getPath(t, h.ServerTime, "/api/server/time", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "America/New_York", body["timezone"])

	parsed, err := time.Parse(time.RFC3339, body["iso"].(string))
	require.NoError(t, err)
	_, offset := parsed.Zone()
	assert.NotEqual(t, 0, offset)
}

func TestSystemRejectsPOST(t *testing.T) {
	h := NewSystemHandler(&fakeQueryService{}, time.UTC, "UTC", zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
