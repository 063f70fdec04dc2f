package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/domain"
)

// PostgresHistoryRepo serves the query side of the streams. All
// timestamps leave this layer converted to the configured local zone.
type PostgresHistoryRepo struct {
	db     *sql.DB
	loc    *time.Location
	logger *zap.Logger
}

func NewPostgresHistoryRepo(db *sql.DB, loc *time.Location, logger *zap.Logger) *PostgresHistoryRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresHistoryRepo{db: db, loc: loc, logger: logger}
}

func (r *PostgresHistoryRepo) ListEvents(ctx context.Context, f EventFilters, limit, offset int) ([]*domain.Event, int, error) {
	where := []string{}
	args := []any{}
	argN := 1

	if f.Sensor != "" {
		where = append(where, fmt.Sprintf("(sensor_mac = $%d OR sensor_name ILIKE $%d)", argN, argN+1))
		args = append(args, f.Sensor, "%"+f.Sensor+"%")
		argN += 2
	}
	if f.Room != "" {
		where = append(where, fmt.Sprintf("room ILIKE $%d", argN))
		args = append(args, "%"+f.Room+"%")
		argN++
	}
	if f.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", argN))
		args = append(args, f.Category)
		argN++
	}
	if f.EventType != "" {
		where = append(where, fmt.Sprintf("event_type = $%d", argN))
		args = append(args, f.EventType)
		argN++
	}
	if f.Severity != nil {
		where = append(where, fmt.Sprintf("severity >= $%d", argN))
		args = append(args, *f.Severity)
		argN++
	}
	if f.From != nil {
		where = append(where, fmt.Sprintf("local_time >= $%d", argN))
		args = append(args, *f.From)
		argN++
	}
	if f.To != nil {
		where = append(where, fmt.Sprintf("local_time <= $%d", argN))
		args = append(args, *f.To)
		argN++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	queryCount := `SELECT COUNT(*) FROM event_log ` + whereClause
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `
		SELECT id, local_time, created_at, device_time, bridge_mac, sensor_mac,
		       sensor_name, room, category, event_type, severity, old_value,
		       new_value, message, metadata
		FROM event_log ` + whereClause + fmt.Sprintf(`
		ORDER BY local_time DESC
		LIMIT $%d OFFSET $%d`, argN, argN+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		e.LocalTime = e.LocalTime.In(r.loc)
		e.CreatedAt = e.CreatedAt.In(r.loc)
		if e.DeviceTime != nil {
			t := e.DeviceTime.In(r.loc)
			e.DeviceTime = &t
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func scanEvent(rows *sql.Rows) (*domain.Event, error) {
	var e domain.Event
	var deviceTime sql.NullTime
	var bridgeMAC, sensorMAC, sensorName, room sql.NullString
	var eventType, oldValue, newValue, message sql.NullString
	var metadata []byte

	err := rows.Scan(
		&e.ID, &e.LocalTime, &e.CreatedAt, &deviceTime, &bridgeMAC, &sensorMAC,
		&sensorName, &room, &e.Category, &eventType, &e.Severity, &oldValue,
		&newValue, &message, &metadata,
	)
	if err != nil {
		return nil, err
	}

	e.DeviceTime = timePtr(deviceTime)
	e.BridgeMAC = strPtr(bridgeMAC)
	e.SensorMAC = strPtr(sensorMAC)
	e.SensorName = strPtr(sensorName)
	e.Room = strPtr(room)
	e.EventType = strPtr(eventType)
	e.OldValue = strPtr(oldValue)
	e.NewValue = strPtr(newValue)
	e.Metadata = metadata
	return &e, nil
}

func (r *PostgresHistoryRepo) ClimateHistory(ctx context.Context, sensorMAC string, hours int) ([]map[string]any, error) {
	if sensorMAC == "" {
		return nil, fmt.Errorf("sensor_mac is required")
	}

	query := `
		SELECT local_time, temperature, humidity, pressure, dew_point,
		       mold_risk_score, contact_open, alert_level
		FROM climate_readings
		WHERE sensor_mac = $1 AND local_time > NOW() - ($2 || ' hours')::INTERVAL
		ORDER BY local_time DESC`

	rows, err := r.db.QueryContext(ctx, query, sensorMAC, strconv.Itoa(hours))
	if err != nil {
		return nil, fmt.Errorf("failed to query climate history: %w", err)
	}
	defer rows.Close()

	readings := []map[string]any{}
	for rows.Next() {
		var localTime time.Time
		var temperature, humidity, pressure, dewPoint sql.NullFloat64
		var moldRisk sql.NullInt64
		var contactOpen sql.NullBool
		var alertLevel sql.NullString

		if err := rows.Scan(&localTime, &temperature, &humidity, &pressure, &dewPoint,
			&moldRisk, &contactOpen, &alertLevel); err != nil {
			return nil, fmt.Errorf("failed to scan climate reading: %w", err)
		}
		readings = append(readings, map[string]any{
			"local_time":      localTime.In(r.loc),
			"temperature":     floatPtr(temperature),
			"humidity":        floatPtr(humidity),
			"pressure":        floatPtr(pressure),
			"dew_point":       floatPtr(dewPoint),
			"mold_risk_score": intPtr(moldRisk),
			"contact_open":    boolPtr(contactOpen),
			"alert_level":     strPtr(alertLevel),
		})
	}
	return readings, rows.Err()
}

func (r *PostgresHistoryRepo) BatteryHistory(ctx context.Context, deviceMAC string, days int) ([]map[string]any, error) {
	if deviceMAC == "" {
		return nil, fmt.Errorf("device_mac is required")
	}

	query := `
		SELECT local_time, battery_level, battery_voltage, is_charging,
		       level_change, time_delta_sec
		FROM battery_readings
		WHERE device_mac = $1 AND local_time > NOW() - ($2 || ' days')::INTERVAL
		ORDER BY local_time DESC`

	rows, err := r.db.QueryContext(ctx, query, deviceMAC, strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("failed to query battery history: %w", err)
	}
	defer rows.Close()

	readings := []map[string]any{}
	for rows.Next() {
		var localTime time.Time
		var batteryLevel, levelChange, timeDelta sql.NullInt64
		var batteryVoltage sql.NullFloat64
		var isCharging sql.NullBool

		if err := rows.Scan(&localTime, &batteryLevel, &batteryVoltage, &isCharging,
			&levelChange, &timeDelta); err != nil {
			return nil, fmt.Errorf("failed to scan battery reading: %w", err)
		}
		readings = append(readings, map[string]any{
			"local_time":      localTime.In(r.loc),
			"battery_level":   intPtr(batteryLevel),
			"battery_voltage": floatPtr(batteryVoltage),
			"is_charging":     boolPtr(isCharging),
			"level_change":    intPtr(levelChange),
			"time_delta_sec":  int64Ptr(timeDelta),
		})
	}
	return readings, rows.Err()
}

func (r *PostgresHistoryRepo) ListAlarms(ctx context.Context, limit int) ([]*domain.AlarmEvent, error) {
	query := `
		SELECT id, local_time, device_time, bridge_mac, event_type, alarm_mode,
		       previous_mode, trigger_sensor, trigger_name, trigger_room,
		       duration_seconds, was_silenced, was_entry_delay, was_exit_delay,
		       message
		FROM alarm_events
		ORDER BY local_time DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarm events: %w", err)
	}
	defer rows.Close()

	alarms := []*domain.AlarmEvent{}
	for rows.Next() {
		var a domain.AlarmEvent
		var deviceTime sql.NullTime
		var eventType, alarmMode, previousMode sql.NullString
		var triggerSensor, triggerName, triggerRoom, message sql.NullString
		var duration sql.NullInt64

		err := rows.Scan(&a.ID, &a.LocalTime, &deviceTime, &a.BridgeMAC, &eventType,
			&alarmMode, &previousMode, &triggerSensor, &triggerName, &triggerRoom,
			&duration, &a.WasSilenced, &a.WasEntryDelay, &a.WasExitDelay, &message)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alarm event: %w", err)
		}

		a.LocalTime = a.LocalTime.In(r.loc)
		a.DeviceTime = timePtr(deviceTime)
		if a.DeviceTime != nil {
			t := a.DeviceTime.In(r.loc)
			a.DeviceTime = &t
		}
		a.EventType = strPtr(eventType)
		a.AlarmMode = strPtr(alarmMode)
		a.PreviousMode = strPtr(previousMode)
		a.TriggerSensor = strPtr(triggerSensor)
		a.TriggerName = strPtr(triggerName)
		a.TriggerRoom = strPtr(triggerRoom)
		a.DurationSeconds = intPtr(duration)
		a.Message = strPtr(message)
		alarms = append(alarms, &a)
	}
	return alarms, rows.Err()
}

func (r *PostgresHistoryRepo) SensorEvents(ctx context.Context, sensorMAC string, limit int) ([]map[string]any, error) {
	query := `
		SELECT local_time, event_type, message, old_value, new_value
		FROM event_log
		WHERE sensor_mac = $1
		ORDER BY local_time DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, sensorMAC, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor events: %w", err)
	}
	defer rows.Close()

	events := []map[string]any{}
	for rows.Next() {
		var localTime time.Time
		var eventType, message, oldValue, newValue sql.NullString

		if err := rows.Scan(&localTime, &eventType, &message, &oldValue, &newValue); err != nil {
			return nil, fmt.Errorf("failed to scan sensor event: %w", err)
		}
		events = append(events, map[string]any{
			"local_time": localTime.In(r.loc),
			"event_type": strPtr(eventType),
			"message":    strPtr(message),
			"old_value":  strPtr(oldValue),
			"new_value":  strPtr(newValue),
		})
	}
	return events, rows.Err()
}

func (r *PostgresHistoryRepo) SensorClimate(ctx context.Context, sensorMAC string, limit int) ([]map[string]any, error) {
	query := `
		SELECT local_time, temperature, humidity, pressure
		FROM climate_readings
		WHERE sensor_mac = $1
		ORDER BY local_time DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, sensorMAC, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor climate: %w", err)
	}
	defer rows.Close()

	readings := []map[string]any{}
	for rows.Next() {
		var localTime time.Time
		var temperature, humidity, pressure sql.NullFloat64

		if err := rows.Scan(&localTime, &temperature, &humidity, &pressure); err != nil {
			return nil, fmt.Errorf("failed to scan climate row: %w", err)
		}
		readings = append(readings, map[string]any{
			"local_time":  localTime.In(r.loc),
			"temperature": floatPtr(temperature),
			"humidity":    floatPtr(humidity),
			"pressure":    floatPtr(pressure),
		})
	}
	return readings, rows.Err()
}

func (r *PostgresHistoryRepo) SensorBattery(ctx context.Context, deviceMAC string, limit int) ([]map[string]any, error) {
	query := `
		SELECT local_time, battery_level
		FROM battery_readings
		WHERE device_mac = $1
		ORDER BY local_time DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, deviceMAC, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor battery: %w", err)
	}
	defer rows.Close()

	readings := []map[string]any{}
	for rows.Next() {
		var localTime time.Time
		var batteryLevel sql.NullInt64

		if err := rows.Scan(&localTime, &batteryLevel); err != nil {
			return nil, fmt.Errorf("failed to scan battery row: %w", err)
		}
		readings = append(readings, map[string]any{
			"local_time":    localTime.In(r.loc),
			"battery_level": intPtr(batteryLevel),
		})
	}
	return readings, rows.Err()
}

// EventsByDay buckets event counts by calendar day in the configured
// zone. Bucketing happens in SQL so days roll over at local midnight,
// not UTC midnight.
func (r *PostgresHistoryRepo) EventsByDay(ctx context.Context, days int) ([]map[string]any, error) {
	query := `
		SELECT DATE(local_time AT TIME ZONE $1) AS day, category, COUNT(*) AS count
		FROM event_log
		WHERE local_time > NOW() - ($2 || ' days')::INTERVAL
		GROUP BY DATE(local_time AT TIME ZONE $1), category
		ORDER BY day DESC, category`

	rows, err := r.db.QueryContext(ctx, query, r.loc.String(), strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily events: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var day time.Time
		var category string
		var count int
		if err := rows.Scan(&day, &category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan daily events: %w", err)
		}
		out = append(out, map[string]any{
			"date":     day.Format("2006-01-02"),
			"category": category,
			"count":    count,
		})
	}
	return out, rows.Err()
}

func (r *PostgresHistoryRepo) ClimateByRoomDaily(ctx context.Context, days int) ([]map[string]any, error) {
	query := `
		SELECT DATE(local_time AT TIME ZONE $1) AS day, room,
		       ROUND(AVG(temperature)::numeric, 1) AS avg_temperature,
		       ROUND(AVG(humidity)::numeric, 0) AS avg_humidity,
		       ROUND(MIN(temperature)::numeric, 1) AS min_temperature,
		       ROUND(MAX(temperature)::numeric, 1) AS max_temperature,
		       COUNT(*) AS readings
		FROM climate_readings
		WHERE room IS NOT NULL AND local_time > NOW() - ($2 || ' days')::INTERVAL
		GROUP BY DATE(local_time AT TIME ZONE $1), room
		ORDER BY day DESC, room`

	rows, err := r.db.QueryContext(ctx, query, r.loc.String(), strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily climate: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var day time.Time
		var room string
		var avgTemp, avgHumidity, minTemp, maxTemp sql.NullFloat64
		var readings int

		if err := rows.Scan(&day, &room, &avgTemp, &avgHumidity, &minTemp, &maxTemp, &readings); err != nil {
			return nil, fmt.Errorf("failed to scan daily climate: %w", err)
		}
		out = append(out, map[string]any{
			"date":            day.Format("2006-01-02"),
			"room":            room,
			"avg_temperature": floatPtr(avgTemp),
			"avg_humidity":    floatPtr(avgHumidity),
			"min_temperature": floatPtr(minTemp),
			"max_temperature": floatPtr(maxTemp),
			"readings":        readings,
		})
	}
	return out, rows.Err()
}

func (r *PostgresHistoryRepo) ContactActivityDaily(ctx context.Context, days int) ([]map[string]any, error) {
	query := `
		SELECT DATE(local_time AT TIME ZONE $1) AS day, sensor_name, room,
		       COUNT(*) FILTER (WHERE event_type = 'contact_opened') AS opens,
		       COUNT(*) FILTER (WHERE event_type = 'contact_closed') AS closes
		FROM event_log
		WHERE category = 'sensor'
		  AND event_type IN ('contact_opened', 'contact_closed')
		  AND local_time > NOW() - ($2 || ' days')::INTERVAL
		GROUP BY DATE(local_time AT TIME ZONE $1), sensor_name, room
		ORDER BY day DESC, opens DESC`

	rows, err := r.db.QueryContext(ctx, query, r.loc.String(), strconv.Itoa(days))
	if err != nil {
		return nil, fmt.Errorf("failed to query contact activity: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var day time.Time
		var sensorName, room sql.NullString
		var opens, closes int

		if err := rows.Scan(&day, &sensorName, &room, &opens, &closes); err != nil {
			return nil, fmt.Errorf("failed to scan contact activity: %w", err)
		}
		out = append(out, map[string]any{
			"date":        day.Format("2006-01-02"),
			"sensor_name": strPtr(sensorName),
			"room":        strPtr(room),
			"opens":       opens,
			"closes":      closes,
		})
	}
	return out, rows.Err()
}

func (r *PostgresHistoryRepo) RecentActivity(ctx context.Context, limit int) ([]map[string]any, error) {
	query := `
		SELECT id, local_time, category, event_type, severity, sensor_name,
		       room, message
		FROM event_log
		ORDER BY local_time DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var id int64
		var localTime time.Time
		var category string
		var severity int
		var eventType, sensorName, room, message sql.NullString

		if err := rows.Scan(&id, &localTime, &category, &eventType, &severity,
			&sensorName, &room, &message); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		out = append(out, map[string]any{
			"id":          id,
			"local_time":  localTime.In(r.loc),
			"category":    category,
			"event_type":  strPtr(eventType),
			"severity":    severity,
			"sensor_name": strPtr(sensorName),
			"room":        strPtr(room),
			"message":     strPtr(message),
		})
	}
	return out, rows.Err()
}

// CurrentClimate returns the latest climate reading per sensor.
func (r *PostgresHistoryRepo) CurrentClimate(ctx context.Context) ([]map[string]any, error) {
	query := `
		SELECT DISTINCT ON (sensor_mac)
		       sensor_mac, sensor_name, room, local_time, temperature, humidity,
		       pressure, dew_point, mold_risk_score, alert_level, contact_open
		FROM climate_readings
		ORDER BY sensor_mac, local_time DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query current climate: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var sensorMAC string
		var sensorName, room, alertLevel sql.NullString
		var localTime time.Time
		var temperature, humidity, pressure, dewPoint sql.NullFloat64
		var moldRisk sql.NullInt64
		var contactOpen sql.NullBool

		if err := rows.Scan(&sensorMAC, &sensorName, &room, &localTime, &temperature,
			&humidity, &pressure, &dewPoint, &moldRisk, &alertLevel, &contactOpen); err != nil {
			return nil, fmt.Errorf("failed to scan current climate: %w", err)
		}
		out = append(out, map[string]any{
			"sensor_mac":      sensorMAC,
			"sensor_name":     strPtr(sensorName),
			"room":            strPtr(room),
			"local_time":      localTime.In(r.loc),
			"temperature":     floatPtr(temperature),
			"humidity":        floatPtr(humidity),
			"pressure":        floatPtr(pressure),
			"dew_point":       floatPtr(dewPoint),
			"mold_risk_score": intPtr(moldRisk),
			"alert_level":     strPtr(alertLevel),
			"contact_open":    boolPtr(contactOpen),
		})
	}
	return out, rows.Err()
}

func (r *PostgresHistoryRepo) DashboardSummary(ctx context.Context) (map[string]any, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM sensors) AS total_sensors,
			(SELECT COUNT(*) FROM sensors WHERE is_online) AS sensors_online,
			(SELECT COUNT(*) FROM sensors WHERE contact_open) AS contacts_open,
			(SELECT COUNT(*) FROM bridges) AS total_bridges,
			(SELECT COUNT(*) FROM bridges WHERE is_armed) AS bridges_armed,
			(SELECT COUNT(*) FROM event_log WHERE local_time > NOW() - INTERVAL '24 hours') AS events_24h,
			(SELECT COUNT(*) FROM alarm_events WHERE local_time > NOW() - INTERVAL '24 hours') AS alarms_24h,
			(SELECT MAX(local_time) FROM event_log) AS last_event_time`

	var totalSensors, sensorsOnline, contactsOpen, totalBridges, bridgesArmed int
	var events24h, alarms24h int
	var lastEventTime sql.NullTime

	err := r.db.QueryRowContext(ctx, query).Scan(
		&totalSensors, &sensorsOnline, &contactsOpen, &totalBridges, &bridgesArmed,
		&events24h, &alarms24h, &lastEventTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard summary: %w", err)
	}

	summary := map[string]any{
		"total_sensors":   totalSensors,
		"sensors_online":  sensorsOnline,
		"contacts_open":   contactsOpen,
		"total_bridges":   totalBridges,
		"bridges_armed":   bridgesArmed,
		"events_24h":      events24h,
		"alarms_24h":      alarms24h,
		"last_event_time": nil,
	}
	if lastEventTime.Valid {
		summary["last_event_time"] = lastEventTime.Time.In(r.loc)
	}
	return summary, nil
}

func (r *PostgresHistoryRepo) ExportEvents(ctx context.Context, from, to time.Time) ([]*domain.ExportEvent, error) {
	query := `
		SELECT local_time, category, event_type, sensor_name, room, severity,
		       old_value, new_value, message
		FROM event_log
		WHERE local_time BETWEEN $1 AND $2
		ORDER BY local_time DESC`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query export events: %w", err)
	}
	defer rows.Close()

	out := []*domain.ExportEvent{}
	for rows.Next() {
		var e domain.ExportEvent
		var eventType, sensorName, room, oldValue, newValue, message sql.NullString

		if err := rows.Scan(&e.LocalTime, &e.Category, &eventType, &sensorName, &room,
			&e.Severity, &oldValue, &newValue, &message); err != nil {
			return nil, fmt.Errorf("failed to scan export event: %w", err)
		}
		e.LocalTime = e.LocalTime.In(r.loc)
		e.EventType = eventType.String
		e.SensorName = sensorName.String
		e.Room = room.String
		e.OldValue = oldValue.String
		e.NewValue = newValue.String
		e.Message = message.String
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *PostgresHistoryRepo) HealthCounts(ctx context.Context) (*domain.HealthCounts, error) {
	var h domain.HealthCounts
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_log`).Scan(&h.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensors`).Scan(&h.TotalSensors); err != nil {
		return nil, fmt.Errorf("failed to count sensors: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensors WHERE is_online`).Scan(&h.SensorsOnline); err != nil {
		return nil, fmt.Errorf("failed to count online sensors: %w", err)
	}
	return &h, nil
}

// Null column helpers shared by the postgres repositories.

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func boolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
