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

	"homesentry-data/internal/domain"
)

func setupTelemetryRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresTelemetryRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewPostgresTelemetryRepo(db, time.UTC, zap.NewNop())
	return db, mock, repo
}

func strp(s string) *string     { return &s }
func intp(i int) *int           { return &i }
func i64p(i int64) *int64       { return &i }
func boolp(b bool) *bool        { return &b }
func floatp(f float64) *float64 { return &f }

func appendRows(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "local_time"}).AddRow(id, time.Now())
}

func TestLogEvent(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO event_log`).
		WithArgs("AA:BB:CC:DD:EE:FF", "11:22:33:44:55:66", "Balcony Door", "Living Room",
			"sensor", "contact_opened", 1, "closed", "open", nil, nil, nil, nil, nil).
		WillReturnRows(appendRows(7))

	rep := &domain.EventReport{
		BridgeMAC:  strp("AA:BB:CC:DD:EE:FF"),
		SensorMAC:  strp("11:22:33:44:55:66"),
		SensorName: strp("Balcony Door"),
		Room:       strp("Living Room"),
		EventType:  strp("contact_opened"),
		Severity:   intp(1),
		OldValue:   strp("closed"),
		NewValue:   strp("open"),
	}
	res, err := repo.LogEvent(context.Background(), rep, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogEventDefaults(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	// Absent category and severity default to "sensor" and 0.
	mock.ExpectQuery(`INSERT INTO event_log`).
		WithArgs("AA:BB:CC:DD:EE:FF", nil, nil, nil, "sensor", nil,
			0, nil, nil, nil, nil, nil, nil, nil).
		WillReturnRows(appendRows(1))

	rep := &domain.EventReport{BridgeMAC: strp("AA:BB:CC:DD:EE:FF")}
	_, err := repo.LogEvent(context.Background(), rep, nil)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogEventRequiresBridgeMAC(t *testing.T) {
	db, _, repo := setupTelemetryRepo(t)
	defer db.Close()

	_, err := repo.LogEvent(context.Background(), &domain.EventReport{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bridge_mac is required")
}

func TestLogEventAcceptsDuplicateSubmissions(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	// The streams are append-only with no dedup: resubmitting the same
	// payload appends a second record instead of being rejected.
	mock.ExpectQuery(`INSERT INTO event_log`).WillReturnRows(appendRows(1))
	mock.ExpectQuery(`INSERT INTO event_log`).WillReturnRows(appendRows(2))

	rep := &domain.EventReport{
		BridgeMAC: strp("AA:BB:CC:DD:EE:FF"),
		EventType: strp("contact_opened"),
	}
	first, err := repo.LogEvent(context.Background(), rep, nil)
	require.NoError(t, err)
	second, err := repo.LogEvent(context.Background(), rep, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogClimate(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO climate_readings`).
		WillReturnRows(appendRows(12))
	mock.ExpectExec(`INSERT INTO sensors`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	devTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	rep := &domain.ClimateReport{
		SensorMAC:   strp("11:22:33:44:55:66"),
		Temperature: floatp(21.5),
		Humidity:    floatp(48),
		AlertLevel:  strp("ok"),
	}
	res, err := repo.LogClimate(context.Background(), rep, &devTime)

	require.NoError(t, err)
	assert.Equal(t, int64(12), res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogClimateRequiresSensorMAC(t *testing.T) {
	db, _, repo := setupTelemetryRepo(t)
	defer db.Close()

	_, err := repo.LogClimate(context.Background(), &domain.ClimateReport{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensor_mac is required")
}

func TestLogClimateRollsBackWhenMergeFails(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	// Append and registry merge ride one transaction: a failed merge
	// must take the stream insert down with it.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO climate_readings`).
		WillReturnRows(appendRows(12))
	mock.ExpectExec(`INSERT INTO sensors`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	rep := &domain.ClimateReport{SensorMAC: strp("11:22:33:44:55:66")}
	_, err := repo.LogClimate(context.Background(), rep, nil)

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogBatteryDerivesTrend(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	prevTime := time.Now().Add(-2 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT battery_level, local_time FROM battery_readings`).
		WithArgs("11:22:33:44:55:66").
		WillReturnRows(sqlmock.NewRows([]string{"battery_level", "local_time"}).
			AddRow(90, prevTime))
	mock.ExpectQuery(`INSERT INTO battery_readings`).
		WithArgs("sensor", "11:22:33:44:55:66", "Balcony Door", 85, 4.02, false,
			-5, sqlmock.AnyArg(), nil).
		WillReturnRows(appendRows(3))
	mock.ExpectExec(`INSERT INTO sensors`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rep := &domain.BatteryReport{
		DeviceType:     strp("sensor"),
		DeviceMAC:      strp("11:22:33:44:55:66"),
		DeviceName:     strp("Balcony Door"),
		BatteryLevel:   intp(85),
		BatteryVoltage: floatp(4.02),
		IsCharging:     boolp(false),
	}
	res, err := repo.LogBattery(context.Background(), rep, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(3), res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogBatteryFirstReadingHasNoTrend(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT battery_level, local_time FROM battery_readings`).
		WithArgs("AA:BB:CC:DD:EE:FF").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO battery_readings`).
		WithArgs("bridge", "AA:BB:CC:DD:EE:FF", nil, 72, 3.9, nil, nil, nil, nil).
		WillReturnRows(appendRows(1))
	mock.ExpectExec(`INSERT INTO bridges`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rep := &domain.BatteryReport{
		DeviceType:     strp("bridge"),
		DeviceMAC:      strp("AA:BB:CC:DD:EE:FF"),
		BatteryLevel:   intp(72),
		BatteryVoltage: floatp(3.9),
	}
	_, err := repo.LogBattery(context.Background(), rep, nil)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogBatteryScopesTrendLookupToDevice(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	// Interleaved reports from different devices must each pair with
	// their own previous reading.
	for _, mac := range []string{"11:11:11:11:11:11", "22:22:22:22:22:22"} {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT battery_level, local_time FROM battery_readings`).
			WithArgs(mac).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO battery_readings`).
			WillReturnRows(appendRows(1))
		mock.ExpectExec(`INSERT INTO sensors`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	for _, mac := range []string{"11:11:11:11:11:11", "22:22:22:22:22:22"} {
		rep := &domain.BatteryReport{
			DeviceType:   strp("sensor"),
			DeviceMAC:    strp(mac),
			BatteryLevel: intp(50),
		}
		_, err := repo.LogBattery(context.Background(), rep, nil)
		require.NoError(t, err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogBatteryUnknownDeviceTypeSkipsMerge(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT battery_level, local_time FROM battery_readings`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO battery_readings`).
		WillReturnRows(appendRows(1))
	mock.ExpectCommit()

	rep := &domain.BatteryReport{
		DeviceMAC:    strp("11:22:33:44:55:66"),
		BatteryLevel: intp(50),
	}
	_, err := repo.LogBattery(context.Background(), rep, nil)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogAlarm(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO alarm_events`).
		WithArgs("AA:BB:CC:DD:EE:FF", "triggered", "armed_away", nil, "11:22:33:44:55:66",
			"Balcony Door", "Living Room", nil, nil, true, nil, "Alarm triggered", nil).
		WillReturnRows(appendRows(5))
	mock.ExpectExec(`INSERT INTO bridges`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rep := &domain.AlarmReport{
		BridgeMAC:     strp("AA:BB:CC:DD:EE:FF"),
		EventType:     strp("triggered"),
		AlarmMode:     strp("armed_away"),
		TriggerSensor: strp("11:22:33:44:55:66"),
		TriggerName:   strp("Balcony Door"),
		TriggerRoom:   strp("Living Room"),
		WasEntryDelay: boolp(true),
		Message:       strp("Alarm triggered"),
	}
	res, err := repo.LogAlarm(context.Background(), rep, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(5), res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogMetrics(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO system_metrics`).
		WithArgs("AA:BB:CC:DD:EE:FF", int64(152000), int64(140000), nil, -61,
			6, int64(86400), nil, 5, 6, nil, nil).
		WillReturnRows(appendRows(9))
	mock.ExpectExec(`INSERT INTO bridges`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rep := &domain.MetricsReport{
		BridgeMAC:     strp("AA:BB:CC:DD:EE:FF"),
		FreeHeap:      i64p(152000),
		MinFreeHeap:   i64p(140000),
		WifiRSSI:      intp(-61),
		WifiChannel:   intp(6),
		UptimeSeconds: i64p(86400),
		SensorsOnline: intp(5),
		SensorsTotal:  intp(6),
	}
	res, err := repo.LogMetrics(context.Background(), rep, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(9), res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogBridgeState(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO event_log`).
		WithArgs("AA:BB:CC:DD:EE:FF",
			"State: armed_home | Armed: true | Exit: false | Entry: false | Sensors: 5/6",
			`{"bridge_mac":"AA:BB:CC:DD:EE:FF"}`).
		WillReturnRows(appendRows(20))
	mock.ExpectExec(`INSERT INTO bridges`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rep := &domain.BridgeStateReport{
		BridgeMAC:     strp("AA:BB:CC:DD:EE:FF"),
		AlarmModeName: strp("armed_home"),
		IsArmed:       boolp(true),
		Raw:           []byte(`{"bridge_mac":"AA:BB:CC:DD:EE:FF"}`),
	}
	msg := "State: armed_home | Armed: true | Exit: false | Entry: false | Sensors: 5/6"
	res, err := repo.LogBridgeState(context.Background(), rep, msg)

	require.NoError(t, err)
	assert.Equal(t, int64(20), res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogSensorSnapshot(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO event_log`).
		WillReturnRows(appendRows(31))

	rep := &domain.SensorStateReport{
		BridgeMAC: strp("AA:BB:CC:DD:EE:FF"),
		SensorMAC: strp("11:22:33:44:55:66"),
		Online:    boolp(true),
		Raw:       []byte(`{"online":true}`),
	}
	res, err := repo.LogSensorSnapshot(context.Background(), rep, "Balcony @ Living Room | Online")

	require.NoError(t, err)
	assert.Equal(t, int64(31), res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeSensorState(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO sensors`).
		WithArgs("11:22:33:44:55:66", "AA:BB:CC:DD:EE:FF", "Balcony Door", "Living Room",
			nil, nil, true, 21.5, nil, nil, nil, nil, nil, true, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rep := &domain.SensorStateReport{
		BridgeMAC:   strp("AA:BB:CC:DD:EE:FF"),
		SensorMAC:   strp("11:22:33:44:55:66"),
		SensorName:  strp("Balcony Door"),
		Room:        strp("Living Room"),
		ContactOpen: boolp(true),
		Temperature: floatp(21.5),
		IsOnline:    boolp(true),
	}
	err := repo.MergeSensorState(context.Background(), rep)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeSensorStateFallsBackToNameField(t *testing.T) {
	db, mock, repo := setupTelemetryRepo(t)
	defer db.Close()

	// "name" is accepted as a synonym when "sensor_name" is absent.
	mock.ExpectExec(`INSERT INTO sensors`).
		WithArgs("11:22:33:44:55:66", nil, "Kitchen Window", nil,
			nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rep := &domain.SensorStateReport{
		SensorMAC: strp("11:22:33:44:55:66"),
		Name:      strp("Kitchen Window"),
	}
	err := repo.MergeSensorState(context.Background(), rep)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
