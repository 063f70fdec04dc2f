package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/domain"
)

type PostgresDevicesRepo struct {
	db     *sql.DB
	loc    *time.Location
	logger *zap.Logger
}

func NewPostgresDevicesRepo(db *sql.DB, loc *time.Location, logger *zap.Logger) *PostgresDevicesRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresDevicesRepo{db: db, loc: loc, logger: logger}
}

const sensorColumns = `mac_address, bridge_mac, name, room, is_entry_exit, is_active,
	contact_open, temperature, humidity, pressure, dew_point, battery_level,
	is_charging, is_online, operational_mode, bypass_active, night_bypass,
	climate_alert, last_seen, created_at`

func (r *PostgresDevicesRepo) ListSensors(ctx context.Context) ([]*domain.Sensor, error) {
	query := `SELECT ` + sensorColumns + `
		FROM sensors
		ORDER BY room NULLS LAST, name NULLS LAST, mac_address`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensors: %w", err)
	}
	defer rows.Close()

	sensors := []*domain.Sensor{}
	for rows.Next() {
		s, err := r.scanSensor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		sensors = append(sensors, s)
	}
	return sensors, rows.Err()
}

func (r *PostgresDevicesRepo) GetSensor(ctx context.Context, mac string) (*domain.Sensor, error) {
	if mac == "" {
		return nil, fmt.Errorf("mac is required")
	}

	query := `SELECT ` + sensorColumns + ` FROM sensors WHERE mac_address = $1`
	s, err := r.scanSensor(r.db.QueryRowContext(ctx, query, mac).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}
	return s, nil
}

func (r *PostgresDevicesRepo) scanSensor(scan func(...any) error) (*domain.Sensor, error) {
	var s domain.Sensor
	var bridgeMAC, name, room sql.NullString
	var contactOpen, isCharging sql.NullBool
	var temperature, humidity, pressure, dewPoint sql.NullFloat64
	var batteryLevel sql.NullInt64
	var lastSeen sql.NullTime

	err := scan(
		&s.MACAddress, &bridgeMAC, &name, &room, &s.IsEntryExit, &s.IsActive,
		&contactOpen, &temperature, &humidity, &pressure, &dewPoint, &batteryLevel,
		&isCharging, &s.IsOnline, &s.OperationalMode, &s.BypassActive, &s.NightBypass,
		&s.ClimateAlert, &lastSeen, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.BridgeMAC = strPtr(bridgeMAC)
	s.Name = strPtr(name)
	s.Room = strPtr(room)
	s.ContactOpen = boolPtr(contactOpen)
	s.Temperature = floatPtr(temperature)
	s.Humidity = floatPtr(humidity)
	s.Pressure = floatPtr(pressure)
	s.DewPoint = floatPtr(dewPoint)
	s.BatteryLevel = intPtr(batteryLevel)
	s.IsCharging = boolPtr(isCharging)
	s.LastSeen = timePtr(lastSeen)
	if s.LastSeen != nil {
		t := s.LastSeen.In(r.loc)
		s.LastSeen = &t
	}
	s.CreatedAt = s.CreatedAt.In(r.loc)
	return &s, nil
}

func (r *PostgresDevicesRepo) ListBridges(ctx context.Context) ([]*domain.Bridge, error) {
	query := `
		SELECT mac_address, name, alarm_mode, is_armed, battery_level,
		       battery_voltage, free_heap, uptime_seconds, is_online,
		       last_seen, created_at
		FROM bridges
		ORDER BY mac_address`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bridges: %w", err)
	}
	defer rows.Close()

	bridges := []*domain.Bridge{}
	for rows.Next() {
		var b domain.Bridge
		var name, alarmMode sql.NullString
		var batteryLevel, freeHeap, uptime sql.NullInt64
		var batteryVoltage sql.NullFloat64
		var lastSeen sql.NullTime

		err := rows.Scan(&b.MACAddress, &name, &alarmMode, &b.IsArmed, &batteryLevel,
			&batteryVoltage, &freeHeap, &uptime, &b.IsOnline, &lastSeen, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bridge: %w", err)
		}

		b.Name = strPtr(name)
		b.AlarmMode = strPtr(alarmMode)
		b.BatteryLevel = intPtr(batteryLevel)
		b.BatteryVoltage = floatPtr(batteryVoltage)
		b.FreeHeap = int64Ptr(freeHeap)
		b.UptimeSeconds = int64Ptr(uptime)
		b.LastSeen = timePtr(lastSeen)
		if b.LastSeen != nil {
			t := b.LastSeen.In(r.loc)
			b.LastSeen = &t
		}
		b.CreatedAt = b.CreatedAt.In(r.loc)
		bridges = append(bridges, &b)
	}
	return bridges, rows.Err()
}
