package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupDevicesRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresDevicesRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewPostgresDevicesRepo(db, time.UTC, zap.NewNop())
	return db, mock, repo
}

func sensorRowColumns() []string {
	return []string{"mac_address", "bridge_mac", "name", "room", "is_entry_exit",
		"is_active", "contact_open", "temperature", "humidity", "pressure",
		"dew_point", "battery_level", "is_charging", "is_online", "operational_mode",
		"bypass_active", "night_bypass", "climate_alert", "last_seen", "created_at"}
}

func TestListSensors(t *testing.T) {
	db, mock, repo := setupDevicesRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM sensors`).
		WillReturnRows(sqlmock.NewRows(sensorRowColumns()).
			AddRow("11:22:33:44:55:66", "AA:BB:CC:DD:EE:FF", "Balcony Door", "Living Room",
				true, true, false, 21.5, 48.0, nil, nil, 85, false, true, "normal",
				false, false, "ok", now, now).
			AddRow("77:88:99:AA:BB:CC", nil, nil, nil,
				false, true, nil, nil, nil, nil, nil, nil, nil, true, "normal",
				false, false, "ok", nil, now))

	sensors, err := repo.ListSensors(context.Background())

	require.NoError(t, err)
	require.Len(t, sensors, 2)
	assert.Equal(t, "11:22:33:44:55:66", sensors[0].MACAddress)
	assert.Equal(t, "Balcony Door", *sensors[0].Name)
	assert.True(t, sensors[0].IsEntryExit)
	assert.Nil(t, sensors[1].Name)
	assert.Nil(t, sensors[1].LastSeen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSensor(t *testing.T) {
	db, mock, repo := setupDevicesRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM sensors WHERE mac_address`).
		WithArgs("11:22:33:44:55:66").
		WillReturnRows(sqlmock.NewRows(sensorRowColumns()).
			AddRow("11:22:33:44:55:66", nil, "Balcony Door", "Living Room",
				false, true, true, 21.5, 48.0, 1013.2, 10.1, 85, false, true,
				"normal", false, false, "ok", now, now))

	s, err := repo.GetSensor(context.Background(), "11:22:33:44:55:66")

	require.NoError(t, err)
	assert.Equal(t, "11:22:33:44:55:66", s.MACAddress)
	assert.True(t, *s.ContactOpen)
	assert.Equal(t, 85, *s.BatteryLevel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSensorNotFound(t *testing.T) {
	db, mock, repo := setupDevicesRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM sensors WHERE mac_address`).
		WithArgs("00:00:00:00:00:00").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSensor(context.Background(), "00:00:00:00:00:00")

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBridges(t *testing.T) {
	db, mock, repo := setupDevicesRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT mac_address, name, alarm_mode`).
		WillReturnRows(sqlmock.NewRows([]string{"mac_address", "name", "alarm_mode",
			"is_armed", "battery_level", "battery_voltage", "free_heap",
			"uptime_seconds", "is_online", "last_seen", "created_at"}).
			AddRow("AA:BB:CC:DD:EE:FF", "Main Bridge", "armed_home", true, 72, 3.9,
				152000, 86400, true, now, now))

	bridges, err := repo.ListBridges(context.Background())

	require.NoError(t, err)
	require.Len(t, bridges, 1)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", bridges[0].MACAddress)
	assert.True(t, bridges[0].IsArmed)
	assert.Equal(t, int64(152000), *bridges[0].FreeHeap)
	require.NoError(t, mock.ExpectationsWereMet())
}
