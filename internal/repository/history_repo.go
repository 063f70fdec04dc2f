package repository

import (
	"context"
	"time"

	"homesentry-data/internal/domain"
)

// EventFilters narrows the event log query. Zero values mean "no
// filter"; all set filters combine with AND.
type EventFilters struct {
	Sensor    string // matches sensor_mac exactly or sensor_name as substring
	Room      string // substring match
	Category  string
	EventType string
	Severity  *int // minimum severity
	From      *time.Time
	To        *time.Time
}

// HistoryRepository is the read side of the streams. Subset queries
// return rows as maps so the response shape mirrors the selected
// columns exactly; timestamps are already converted to the service's
// local zone.
type HistoryRepository interface {
	ListEvents(ctx context.Context, filters EventFilters, limit, offset int) ([]*domain.Event, int, error)
	ClimateHistory(ctx context.Context, sensorMAC string, hours int) ([]map[string]any, error)
	BatteryHistory(ctx context.Context, deviceMAC string, days int) ([]map[string]any, error)
	ListAlarms(ctx context.Context, limit int) ([]*domain.AlarmEvent, error)

	// Sensor detail sub-queries, newest first.
	SensorEvents(ctx context.Context, sensorMAC string, limit int) ([]map[string]any, error)
	SensorClimate(ctx context.Context, sensorMAC string, limit int) ([]map[string]any, error)
	SensorBattery(ctx context.Context, deviceMAC string, limit int) ([]map[string]any, error)

	// Daily aggregations, bucketed by calendar day in the configured
	// local zone.
	EventsByDay(ctx context.Context, days int) ([]map[string]any, error)
	ClimateByRoomDaily(ctx context.Context, days int) ([]map[string]any, error)
	ContactActivityDaily(ctx context.Context, days int) ([]map[string]any, error)

	RecentActivity(ctx context.Context, limit int) ([]map[string]any, error)
	CurrentClimate(ctx context.Context) ([]map[string]any, error)
	DashboardSummary(ctx context.Context) (map[string]any, error)

	ExportEvents(ctx context.Context, from, to time.Time) ([]*domain.ExportEvent, error)
	HealthCounts(ctx context.Context) (*domain.HealthCounts, error)
}
