package repository

import (
	"context"
	"time"

	"homesentry-data/internal/domain"
)

// AppendResult identifies a freshly appended stream record.
type AppendResult struct {
	ID        int64
	LocalTime time.Time
}

// TelemetryRepository is the write side of the five append-only
// streams. Each Log* call appends one record and, where the stream
// implies a live device, merges the reported fields into the device
// registry within the same transaction. The device-asserted timestamp
// is passed pre-normalized; nil means the device clock was unusable.
type TelemetryRepository interface {
	LogEvent(ctx context.Context, rep *domain.EventReport, deviceTime *time.Time) (*AppendResult, error)
	LogClimate(ctx context.Context, rep *domain.ClimateReport, deviceTime *time.Time) (*AppendResult, error)
	LogBattery(ctx context.Context, rep *domain.BatteryReport, deviceTime *time.Time) (*AppendResult, error)
	LogAlarm(ctx context.Context, rep *domain.AlarmReport, deviceTime *time.Time) (*AppendResult, error)
	LogMetrics(ctx context.Context, rep *domain.MetricsReport, deviceTime *time.Time) (*AppendResult, error)

	// LogBridgeState writes the bridge's full-state snapshot into the
	// event log and refreshes the bridge registry row.
	LogBridgeState(ctx context.Context, rep *domain.BridgeStateReport, message string) (*AppendResult, error)

	// LogSensorSnapshot writes a readable sensor status line into the
	// event log without touching the registry.
	LogSensorSnapshot(ctx context.Context, rep *domain.SensorStateReport, message string) (*AppendResult, error)

	// MergeSensorState upserts the reported fields into the sensor
	// registry, creating the row on first contact.
	MergeSensorState(ctx context.Context, rep *domain.SensorStateReport) error
}
