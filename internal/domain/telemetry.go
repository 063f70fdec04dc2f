package domain

import (
	"encoding/json"
	"time"
)

// Event is one row of the general event log (event_log table).
// local_time is the authoritative server-side timestamp; device_time
// is the device's own clock when it was usable.
type Event struct {
	ID         int64           `json:"id" db:"id"`
	LocalTime  time.Time       `json:"local_time" db:"local_time"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	DeviceTime *time.Time      `json:"device_time" db:"device_time"`
	BridgeMAC  *string         `json:"bridge_mac" db:"bridge_mac"`
	SensorMAC  *string         `json:"sensor_mac" db:"sensor_mac"`
	SensorName *string         `json:"sensor_name" db:"sensor_name"`
	Room       *string         `json:"room" db:"room"`
	Category   string          `json:"category" db:"category"` // sensor, system, security, climate
	EventType  *string         `json:"event_type" db:"event_type"`
	Severity   int             `json:"severity" db:"severity"`
	OldValue   *string         `json:"old_value" db:"old_value"`
	NewValue   *string         `json:"new_value" db:"new_value"`
	Message    *string         `json:"message" db:"message"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
}

// ClimateReading is one row of the climate_readings stream.
type ClimateReading struct {
	ID            int64      `json:"id" db:"id"`
	LocalTime     time.Time  `json:"local_time" db:"local_time"`
	DeviceTime    *time.Time `json:"device_time" db:"device_time"`
	SensorMAC     string     `json:"sensor_mac" db:"sensor_mac"`
	SensorName    *string    `json:"sensor_name" db:"sensor_name"`
	Room          *string    `json:"room" db:"room"`
	Temperature   *float64   `json:"temperature" db:"temperature"`
	Humidity      *float64   `json:"humidity" db:"humidity"`
	Pressure      *float64   `json:"pressure" db:"pressure"`
	DewPoint      *float64   `json:"dew_point" db:"dew_point"`
	MoldRiskScore *int       `json:"mold_risk_score" db:"mold_risk_score"`
	HeatIndex     *float64   `json:"heat_index" db:"heat_index"`
	ContactOpen   *bool      `json:"contact_open" db:"contact_open"`
	AlertLevel    *string    `json:"alert_level" db:"alert_level"`
}

// BatteryReading is one row of the battery_readings stream. The trend
// columns level_change and time_delta_sec are derived against the
// device's previous reading at append time and stay NULL for the
// first reading.
type BatteryReading struct {
	ID             int64      `json:"id" db:"id"`
	LocalTime      time.Time  `json:"local_time" db:"local_time"`
	DeviceTime     *time.Time `json:"device_time" db:"device_time"`
	DeviceType     string     `json:"device_type" db:"device_type"` // sensor, bridge
	DeviceMAC      string     `json:"device_mac" db:"device_mac"`
	DeviceName     *string    `json:"device_name" db:"device_name"`
	BatteryLevel   *int       `json:"battery_level" db:"battery_level"`
	BatteryVoltage *float64   `json:"battery_voltage" db:"battery_voltage"`
	IsCharging     *bool      `json:"is_charging" db:"is_charging"`
	LevelChange    *int       `json:"level_change" db:"level_change"`
	TimeDeltaSec   *int64     `json:"time_delta_sec" db:"time_delta_sec"`
}

// AlarmEvent is one row of the alarm_events stream.
type AlarmEvent struct {
	ID              int64      `json:"id" db:"id"`
	LocalTime       time.Time  `json:"local_time" db:"local_time"`
	DeviceTime      *time.Time `json:"device_time" db:"device_time"`
	BridgeMAC       string     `json:"bridge_mac" db:"bridge_mac"`
	EventType       *string    `json:"event_type" db:"event_type"` // armed, disarmed, triggered, silenced
	AlarmMode       *string    `json:"alarm_mode" db:"alarm_mode"`
	PreviousMode    *string    `json:"previous_mode" db:"previous_mode"`
	TriggerSensor   *string    `json:"trigger_sensor" db:"trigger_sensor"`
	TriggerName     *string    `json:"trigger_name" db:"trigger_name"`
	TriggerRoom     *string    `json:"trigger_room" db:"trigger_room"`
	DurationSeconds *int       `json:"duration_seconds" db:"duration_seconds"`
	WasSilenced     bool       `json:"was_silenced" db:"was_silenced"`
	WasEntryDelay   bool       `json:"was_entry_delay" db:"was_entry_delay"`
	WasExitDelay    bool       `json:"was_exit_delay" db:"was_exit_delay"`
	Message         *string    `json:"message" db:"message"`
}

// MetricsSample is one row of the system_metrics stream.
type MetricsSample struct {
	ID                int64      `json:"id" db:"id"`
	LocalTime         time.Time  `json:"local_time" db:"local_time"`
	DeviceTime        *time.Time `json:"device_time" db:"device_time"`
	BridgeMAC         string     `json:"bridge_mac" db:"bridge_mac"`
	FreeHeap          *int64     `json:"free_heap" db:"free_heap"`
	MinFreeHeap       *int64     `json:"min_free_heap" db:"min_free_heap"`
	HeapFragmentation int        `json:"heap_fragmentation" db:"heap_fragmentation"`
	WifiRSSI          *int       `json:"wifi_rssi" db:"wifi_rssi"`
	WifiChannel       *int       `json:"wifi_channel" db:"wifi_channel"`
	UptimeSeconds     *int64     `json:"uptime_seconds" db:"uptime_seconds"`
	LoopTimeUs        int64      `json:"loop_time_us" db:"loop_time_us"`
	SensorsOnline     *int       `json:"sensors_online" db:"sensors_online"`
	SensorsTotal      *int       `json:"sensors_total" db:"sensors_total"`
	EventsQueued      int        `json:"events_queued" db:"events_queued"`
}

// ExportEvent is the flattened event row used by the export endpoint.
// Nullable text columns collapse to empty strings so the tabular
// writers stay simple.
type ExportEvent struct {
	LocalTime  time.Time
	Category   string
	EventType  string
	SensorName string
	Room       string
	Severity   int
	OldValue   string
	NewValue   string
	Message    string
}

// HealthCounts is the quick liveness summary behind /api/health.
type HealthCounts struct {
	TotalEvents   int `json:"total_events"`
	TotalSensors  int `json:"total_sensors"`
	SensorsOnline int `json:"sensors_online"`
}
