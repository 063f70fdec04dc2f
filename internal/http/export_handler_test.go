package httpapi

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"homesentry-data/internal/domain"
)

func exportRows() []*domain.ExportEvent {
	return []*domain.ExportEvent{
		{
			LocalTime:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Category:   "security",
			EventType:  "contact_open",
			SensorName: "Front Door",
			Room:       "Hallway",
			Severity:   2,
			OldValue:   "closed",
			NewValue:   "open",
			Message:    "Front Door opened, alarm \"armed_home\"",
		},
		{
			LocalTime:  time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC),
			Category:   "data",
			EventType:  "climate_report",
			SensorName: "Bedroom Climate",
			Room:       "Bedroom",
			Severity:   0,
		},
	}
}

func newExportHandler(svc *fakeQueryService) *ExportHandler {
	return NewExportHandler(svc, NewAPIKeyGate("", "", ""), time.UTC, zap.NewNop())
}

func TestExportCSVDefaultWindow(t *testing.T) {
	h := newExportHandler(&fakeQueryService{exportRows: exportRows()})

	w := getPath(t, h.Events, "/api/export/events", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	// The fake pins the window to 2024-01-15..2024-01-22.
	assert.Equal(t, "attachment; filename=events_2024-01-15_2024-01-22.csv", w.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"local_time", "category", "event_type", "sensor", "room", "severity", "old_value", "new_value", "message"}, records[0])
	assert.Equal(t, "2024-01-15 10:30:00+00:00", records[1][0])
	assert.Equal(t, "security", records[1][1])
	assert.Equal(t, "2", records[1][5])
	// Quoting survives the round trip.
	assert.Equal(t, `Front Door opened, alarm "armed_home"`, records[1][8])
}

func TestExportCSVExplicitWindow(t *testing.T) {
	svc := &fakeQueryService{exportRows: []*domain.ExportEvent{}}
	h := newExportHandler(svc)

	w := getPath(t, h.Events, "/api/export/events?from=2024-01-01T00:00:00Z&to=2024-01-08T00:00:00Z", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=events_2024-01-01_2024-01-08.csv", w.Header().Get("Content-Disposition"))
}

func TestExportRejectsBadTimestamp(t *testing.T) {
	h := newExportHandler(&fakeQueryService{})

	w := getPath(t, h.Events, "/api/export/events?to=lastweek", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid 'to' timestamp", decodeBody(t, w)["error"])
}

func TestExportXLSX(t *testing.T) {
	h := newExportHandler(&fakeQueryService{exportRows: exportRows()})

	w := getPath(t, h.Events, "/api/export/events?format=xlsx", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=events_2024-01-15_2024-01-22.xlsx", w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Events")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Local Time", rows[0][0])
	assert.Equal(t, "Message", rows[0][8])
	assert.Equal(t, "contact_open", rows[1][2])
	assert.Equal(t, "Bedroom", rows[2][4])
}

func TestExportRequiresReadKey(t *testing.T) {
	h := NewExportHandler(&fakeQueryService{}, NewAPIKeyGate("", "read-secret", ""), time.UTC, zap.NewNop())

	w := getPath(t, h.Events, "/api/export/events", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
