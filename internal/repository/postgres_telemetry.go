package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/domain"
)

// PostgresTelemetryRepo appends stream records and keeps the device
// registries in sync. Append and merge always run in one transaction
// so a stream record never lands without its registry update.
type PostgresTelemetryRepo struct {
	db     *sql.DB
	loc    *time.Location
	logger *zap.Logger
}

func NewPostgresTelemetryRepo(db *sql.DB, loc *time.Location, logger *zap.Logger) *PostgresTelemetryRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresTelemetryRepo{db: db, loc: loc, logger: logger}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sensorMerge carries the sparse field set of one sensor registry
// merge. Nil fields are preserved by the upsert.
type sensorMerge struct {
	MAC             string
	BridgeMAC       *string
	Name            *string
	Room            *string
	IsEntryExit     *bool
	IsActive        *bool
	ContactOpen     *bool
	Temperature     *float64
	Humidity        *float64
	Pressure        *float64
	DewPoint        *float64
	BatteryLevel    *int
	IsCharging      *bool
	IsOnline        *bool
	OperationalMode *string
	BypassActive    *bool
	NightBypass     *bool
	ClimateAlert    *string
}

type bridgeMerge struct {
	MAC            string
	Name           *string
	AlarmMode      *string
	IsArmed        *bool
	BatteryLevel   *int
	BatteryVoltage *float64
	FreeHeap       *int64
	UptimeSeconds  *int64
}

// mergeSensor upserts one sensor row. On first contact the row is
// created with operational defaults for whatever the report left out;
// on conflict only the non-null incoming fields overwrite. The update
// arm references the raw parameters for the defaulted columns because
// EXCLUDED already carries the insert-arm default there.
func (r *PostgresTelemetryRepo) mergeSensor(ctx context.Context, ex execer, m *sensorMerge) error {
	query := `
		INSERT INTO sensors (
			mac_address, bridge_mac, name, room, is_entry_exit, is_active,
			contact_open, temperature, humidity, pressure, dew_point,
			battery_level, is_charging, is_online, operational_mode,
			bypass_active, night_bypass, climate_alert, last_seen
		) VALUES (
			$1, $2, $3, $4,
			COALESCE($5, false), COALESCE($6, true),
			$7, $8, $9, $10, $11,
			$12, $13, COALESCE($14, true), COALESCE($15, 'normal'),
			COALESCE($16, false), COALESCE($17, false), COALESCE($18, 'ok'), NOW()
		)
		ON CONFLICT (mac_address) DO UPDATE SET
			bridge_mac       = COALESCE(EXCLUDED.bridge_mac, sensors.bridge_mac),
			name             = COALESCE(EXCLUDED.name, sensors.name),
			room             = COALESCE(EXCLUDED.room, sensors.room),
			is_entry_exit    = COALESCE($5, sensors.is_entry_exit),
			is_active        = COALESCE($6, sensors.is_active),
			contact_open     = COALESCE(EXCLUDED.contact_open, sensors.contact_open),
			temperature      = COALESCE(EXCLUDED.temperature, sensors.temperature),
			humidity         = COALESCE(EXCLUDED.humidity, sensors.humidity),
			pressure         = COALESCE(EXCLUDED.pressure, sensors.pressure),
			dew_point        = COALESCE(EXCLUDED.dew_point, sensors.dew_point),
			battery_level    = COALESCE(EXCLUDED.battery_level, sensors.battery_level),
			is_charging      = COALESCE(EXCLUDED.is_charging, sensors.is_charging),
			is_online        = COALESCE($14, sensors.is_online),
			operational_mode = COALESCE($15, sensors.operational_mode),
			bypass_active    = COALESCE($16, sensors.bypass_active),
			night_bypass     = COALESCE($17, sensors.night_bypass),
			climate_alert    = COALESCE($18, sensors.climate_alert),
			last_seen        = NOW()`

	_, err := ex.ExecContext(ctx, query,
		m.MAC, m.BridgeMAC, m.Name, m.Room, m.IsEntryExit, m.IsActive,
		m.ContactOpen, m.Temperature, m.Humidity, m.Pressure, m.DewPoint,
		m.BatteryLevel, m.IsCharging, m.IsOnline, m.OperationalMode,
		m.BypassActive, m.NightBypass, m.ClimateAlert,
	)
	if err != nil {
		return fmt.Errorf("failed to merge sensor state: %w", err)
	}
	return nil
}

func (r *PostgresTelemetryRepo) mergeBridge(ctx context.Context, ex execer, m *bridgeMerge) error {
	query := `
		INSERT INTO bridges (
			mac_address, name, alarm_mode, is_armed,
			battery_level, battery_voltage, free_heap, uptime_seconds, last_seen
		) VALUES (
			$1, $2, $3, COALESCE($4, false),
			$5, $6, $7, $8, NOW()
		)
		ON CONFLICT (mac_address) DO UPDATE SET
			name            = COALESCE(EXCLUDED.name, bridges.name),
			alarm_mode      = COALESCE(EXCLUDED.alarm_mode, bridges.alarm_mode),
			is_armed        = COALESCE($4, bridges.is_armed),
			battery_level   = COALESCE(EXCLUDED.battery_level, bridges.battery_level),
			battery_voltage = COALESCE(EXCLUDED.battery_voltage, bridges.battery_voltage),
			free_heap       = COALESCE(EXCLUDED.free_heap, bridges.free_heap),
			uptime_seconds  = COALESCE(EXCLUDED.uptime_seconds, bridges.uptime_seconds),
			last_seen       = NOW()`

	_, err := ex.ExecContext(ctx, query,
		m.MAC, m.Name, m.AlarmMode, m.IsArmed,
		m.BatteryLevel, m.BatteryVoltage, m.FreeHeap, m.UptimeSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to merge bridge state: %w", err)
	}
	return nil
}

func (r *PostgresTelemetryRepo) LogEvent(ctx context.Context, rep *domain.EventReport, deviceTime *time.Time) (*AppendResult, error) {
	if rep.BridgeMAC == nil || *rep.BridgeMAC == "" {
		return nil, fmt.Errorf("bridge_mac is required")
	}

	category := "sensor"
	if rep.Category != nil && *rep.Category != "" {
		category = *rep.Category
	}
	severity := 0
	if rep.Severity != nil {
		severity = *rep.Severity
	}

	query := `
		INSERT INTO event_log (
			bridge_mac, sensor_mac, sensor_name, room, category, event_type,
			severity, old_value, new_value, message, device_time, device_millis,
			state_snapshot, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, local_time`

	var res AppendResult
	err := r.db.QueryRowContext(ctx, query,
		rep.BridgeMAC, rep.SensorMAC, rep.SensorName, rep.Room, category, rep.EventType,
		severity, rep.OldValue, rep.NewValue, rep.Message, deviceTime, rep.DeviceMillis,
		jsonArg(rep.StateSnapshot), jsonArg(rep.Metadata),
	).Scan(&res.ID, &res.LocalTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	res.LocalTime = res.LocalTime.In(r.loc)
	return &res, nil
}

func (r *PostgresTelemetryRepo) LogClimate(ctx context.Context, rep *domain.ClimateReport, deviceTime *time.Time) (*AppendResult, error) {
	if rep.SensorMAC == nil || *rep.SensorMAC == "" {
		return nil, fmt.Errorf("sensor_mac is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO climate_readings (
			sensor_mac, sensor_name, room, temperature, humidity, pressure,
			dew_point, mold_risk_score, heat_index, contact_open, alert_level,
			device_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, local_time`

	var res AppendResult
	err = tx.QueryRowContext(ctx, query,
		rep.SensorMAC, rep.SensorName, rep.Room, rep.Temperature, rep.Humidity, rep.Pressure,
		rep.DewPoint, rep.MoldRiskScore, rep.HeatIndex, rep.ContactOpen, rep.AlertLevel,
		deviceTime,
	).Scan(&res.ID, &res.LocalTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert climate reading: %w", err)
	}

	merge := &sensorMerge{
		MAC:          *rep.SensorMAC,
		Temperature:  rep.Temperature,
		Humidity:     rep.Humidity,
		Pressure:     rep.Pressure,
		DewPoint:     rep.DewPoint,
		ContactOpen:  rep.ContactOpen,
		ClimateAlert: rep.AlertLevel,
	}
	if err := r.mergeSensor(ctx, tx, merge); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	res.LocalTime = res.LocalTime.In(r.loc)
	return &res, nil
}

func (r *PostgresTelemetryRepo) LogBattery(ctx context.Context, rep *domain.BatteryReport, deviceTime *time.Time) (*AppendResult, error) {
	if rep.DeviceMAC == nil || *rep.DeviceMAC == "" {
		return nil, fmt.Errorf("device_mac is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Trend derivation reads the previous reading inside the same
	// transaction so concurrent reports for one device cannot pair
	// against a stale predecessor.
	var prevLevel sql.NullInt64
	var prevTime time.Time
	var levelChange *int
	var timeDelta *int64

	err = tx.QueryRowContext(ctx, `
		SELECT battery_level, local_time FROM battery_readings
		WHERE device_mac = $1
		ORDER BY local_time DESC LIMIT 1`, rep.DeviceMAC,
	).Scan(&prevLevel, &prevTime)
	switch {
	case err == sql.ErrNoRows:
		// First reading for this device, trend columns stay NULL.
		r.logger.Debug("first battery reading", zap.String("device_mac", *rep.DeviceMAC))
	case err != nil:
		return nil, fmt.Errorf("failed to query previous battery reading: %w", err)
	default:
		if prevLevel.Valid {
			level := 0
			if rep.BatteryLevel != nil {
				level = *rep.BatteryLevel
			}
			change := level - int(prevLevel.Int64)
			levelChange = &change
		}
		delta := int64(time.Since(prevTime).Seconds())
		timeDelta = &delta
	}

	query := `
		INSERT INTO battery_readings (
			device_type, device_mac, device_name, battery_level, battery_voltage,
			is_charging, level_change, time_delta_sec, device_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, local_time`

	var res AppendResult
	err = tx.QueryRowContext(ctx, query,
		rep.DeviceType, rep.DeviceMAC, rep.DeviceName, rep.BatteryLevel, rep.BatteryVoltage,
		rep.IsCharging, levelChange, timeDelta, deviceTime,
	).Scan(&res.ID, &res.LocalTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert battery reading: %w", err)
	}

	if rep.DeviceType != nil {
		switch *rep.DeviceType {
		case "sensor":
			merge := &sensorMerge{
				MAC:          *rep.DeviceMAC,
				BatteryLevel: rep.BatteryLevel,
				IsCharging:   rep.IsCharging,
			}
			if err := r.mergeSensor(ctx, tx, merge); err != nil {
				return nil, err
			}
		case "bridge":
			merge := &bridgeMerge{
				MAC:            *rep.DeviceMAC,
				BatteryLevel:   rep.BatteryLevel,
				BatteryVoltage: rep.BatteryVoltage,
			}
			if err := r.mergeBridge(ctx, tx, merge); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	res.LocalTime = res.LocalTime.In(r.loc)
	return &res, nil
}

func (r *PostgresTelemetryRepo) LogAlarm(ctx context.Context, rep *domain.AlarmReport, deviceTime *time.Time) (*AppendResult, error) {
	if rep.BridgeMAC == nil || *rep.BridgeMAC == "" {
		return nil, fmt.Errorf("bridge_mac is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO alarm_events (
			bridge_mac, event_type, alarm_mode, previous_mode, trigger_sensor,
			trigger_name, trigger_room, duration_seconds, was_silenced,
			was_entry_delay, was_exit_delay, message, device_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			COALESCE($9, false), COALESCE($10, false), COALESCE($11, false),
			$12, $13)
		RETURNING id, local_time`

	var res AppendResult
	err = tx.QueryRowContext(ctx, query,
		rep.BridgeMAC, rep.EventType, rep.AlarmMode, rep.PreviousMode, rep.TriggerSensor,
		rep.TriggerName, rep.TriggerRoom, rep.DurationSeconds, rep.WasSilenced,
		rep.WasEntryDelay, rep.WasExitDelay, rep.Message, deviceTime,
	).Scan(&res.ID, &res.LocalTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert alarm event: %w", err)
	}

	merge := &bridgeMerge{
		MAC:       *rep.BridgeMAC,
		AlarmMode: rep.AlarmMode,
	}
	if err := r.mergeBridge(ctx, tx, merge); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	res.LocalTime = res.LocalTime.In(r.loc)
	return &res, nil
}

func (r *PostgresTelemetryRepo) LogMetrics(ctx context.Context, rep *domain.MetricsReport, deviceTime *time.Time) (*AppendResult, error) {
	if rep.BridgeMAC == nil || *rep.BridgeMAC == "" {
		return nil, fmt.Errorf("bridge_mac is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO system_metrics (
			bridge_mac, free_heap, min_free_heap, heap_fragmentation, wifi_rssi,
			wifi_channel, uptime_seconds, loop_time_us, sensors_online,
			sensors_total, events_queued, device_time
		) VALUES ($1, $2, $3, COALESCE($4, 0), $5, $6, $7,
			COALESCE($8, 0), $9, $10, COALESCE($11, 0), $12)
		RETURNING id, local_time`

	var res AppendResult
	err = tx.QueryRowContext(ctx, query,
		rep.BridgeMAC, rep.FreeHeap, rep.MinFreeHeap, rep.HeapFragmentation, rep.WifiRSSI,
		rep.WifiChannel, rep.UptimeSeconds, rep.LoopTimeUs, rep.SensorsOnline,
		rep.SensorsTotal, rep.EventsQueued, deviceTime,
	).Scan(&res.ID, &res.LocalTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert metrics sample: %w", err)
	}

	merge := &bridgeMerge{
		MAC:           *rep.BridgeMAC,
		FreeHeap:      rep.FreeHeap,
		UptimeSeconds: rep.UptimeSeconds,
	}
	if err := r.mergeBridge(ctx, tx, merge); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	res.LocalTime = res.LocalTime.In(r.loc)
	return &res, nil
}

func (r *PostgresTelemetryRepo) LogBridgeState(ctx context.Context, rep *domain.BridgeStateReport, message string) (*AppendResult, error) {
	if rep.BridgeMAC == nil || *rep.BridgeMAC == "" {
		return nil, fmt.Errorf("bridge_mac is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO event_log (
			bridge_mac, sensor_mac, category, event_type, message, metadata
		) VALUES ($1, NULL, 'system', 'state_snapshot', $2, $3)
		RETURNING id, local_time`

	var res AppendResult
	err = tx.QueryRowContext(ctx, query,
		rep.BridgeMAC, message, jsonArg(rep.Raw),
	).Scan(&res.ID, &res.LocalTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert state snapshot: %w", err)
	}

	merge := &bridgeMerge{
		MAC:           *rep.BridgeMAC,
		AlarmMode:     rep.AlarmModeName,
		IsArmed:       rep.IsArmed,
		UptimeSeconds: rep.UptimeSeconds,
	}
	if err := r.mergeBridge(ctx, tx, merge); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	res.LocalTime = res.LocalTime.In(r.loc)
	return &res, nil
}

func (r *PostgresTelemetryRepo) LogSensorSnapshot(ctx context.Context, rep *domain.SensorStateReport, message string) (*AppendResult, error) {
	if rep.SensorMAC == nil || *rep.SensorMAC == "" {
		return nil, fmt.Errorf("sensor_mac is required")
	}

	query := `
		INSERT INTO event_log (
			bridge_mac, sensor_mac, category, event_type, message, metadata
		) VALUES ($1, $2, 'sensor', 'state_snapshot', $3, $4)
		RETURNING id, local_time`

	var res AppendResult
	err := r.db.QueryRowContext(ctx, query,
		rep.BridgeMAC, rep.SensorMAC, message, jsonArg(rep.Raw),
	).Scan(&res.ID, &res.LocalTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sensor snapshot: %w", err)
	}

	res.LocalTime = res.LocalTime.In(r.loc)
	return &res, nil
}

func (r *PostgresTelemetryRepo) MergeSensorState(ctx context.Context, rep *domain.SensorStateReport) error {
	if rep.SensorMAC == nil || *rep.SensorMAC == "" {
		return fmt.Errorf("sensor_mac is required")
	}

	merge := &sensorMerge{
		MAC:             *rep.SensorMAC,
		BridgeMAC:       rep.BridgeMAC,
		Name:            rep.DisplayName(),
		Room:            rep.Room,
		IsEntryExit:     rep.IsEntryExit,
		IsActive:        rep.IsActive,
		ContactOpen:     rep.ContactOpen,
		Temperature:     rep.Temperature,
		Humidity:        rep.Humidity,
		Pressure:        rep.Pressure,
		DewPoint:        rep.DewPoint,
		BatteryLevel:    rep.BatteryLevel,
		IsCharging:      rep.IsCharging,
		IsOnline:        rep.IsOnline,
		OperationalMode: rep.OperationalMode,
		BypassActive:    rep.BypassActive,
		NightBypass:     rep.NightBypass,
		ClimateAlert:    rep.ClimateAlert,
	}
	return r.mergeSensor(ctx, r.db, merge)
}

// jsonArg prepares raw JSON for a jsonb column. lib/pq would send
// []byte as bytea, so the value goes over as text; empty and literal
// null collapse to NULL.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}
