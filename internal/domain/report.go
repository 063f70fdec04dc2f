package domain

import (
	"encoding/json"

	"homesentry-data/internal/timeparse"
)

// Report payloads are what devices POST to the ingestion endpoints.
// Fields are pointers so absent keys are distinguishable from zero
// values; the merge into the device registry only touches fields that
// were actually sent.

// EventReport feeds the general event log.
type EventReport struct {
	timeparse.ReportedTime
	BridgeMAC     *string         `json:"bridge_mac"`
	SensorMAC     *string         `json:"sensor_mac"`
	SensorName    *string         `json:"sensor_name"`
	Room          *string         `json:"room"`
	Category      *string         `json:"category"`
	EventType     *string         `json:"event_type"`
	Severity      *int            `json:"severity"`
	OldValue      *string         `json:"old_value"`
	NewValue      *string         `json:"new_value"`
	Message       *string         `json:"message"`
	DeviceMillis  *int64          `json:"device_millis"`
	StateSnapshot json.RawMessage `json:"state_snapshot"`
	Metadata      json.RawMessage `json:"metadata"`
}

// ClimateReport feeds the climate_readings stream and refreshes the
// sensor's climate fields.
type ClimateReport struct {
	timeparse.ReportedTime
	SensorMAC     *string  `json:"sensor_mac"`
	SensorName    *string  `json:"sensor_name"`
	Room          *string  `json:"room"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	Pressure      *float64 `json:"pressure"`
	DewPoint      *float64 `json:"dew_point"`
	MoldRiskScore *int     `json:"mold_risk_score"`
	HeatIndex     *float64 `json:"heat_index"`
	ContactOpen   *bool    `json:"contact_open"`
	AlertLevel    *string  `json:"alert_level"`
}

// BatteryReport feeds the battery_readings stream. DeviceType selects
// which registry the level is merged into and defaults to "sensor".
type BatteryReport struct {
	timeparse.ReportedTime
	DeviceType     *string  `json:"device_type"`
	DeviceMAC      *string  `json:"device_mac"`
	DeviceName     *string  `json:"device_name"`
	BatteryLevel   *int     `json:"battery_level"`
	BatteryVoltage *float64 `json:"battery_voltage"`
	IsCharging     *bool    `json:"is_charging"`
}

// AlarmReport feeds the alarm_events stream.
type AlarmReport struct {
	timeparse.ReportedTime
	BridgeMAC       *string `json:"bridge_mac"`
	EventType       *string `json:"event_type"`
	AlarmMode       *string `json:"alarm_mode"`
	PreviousMode    *string `json:"previous_mode"`
	TriggerSensor   *string `json:"trigger_sensor"`
	TriggerName     *string `json:"trigger_name"`
	TriggerRoom     *string `json:"trigger_room"`
	DurationSeconds *int    `json:"duration_seconds"`
	WasSilenced     *bool   `json:"was_silenced"`
	WasEntryDelay   *bool   `json:"was_entry_delay"`
	WasExitDelay    *bool   `json:"was_exit_delay"`
	Message         *string `json:"message"`
}

// BridgeStateReport is the bridge's periodic full-state snapshot. It
// lands in the event log as an audit record and refreshes the bridge
// registry row. Raw carries the complete request body for the audit
// record's metadata.
type BridgeStateReport struct {
	BridgeMAC     *string `json:"bridge_mac"`
	AlarmMode     *int    `json:"alarm_mode"`
	AlarmModeName *string `json:"alarm_mode_name"`
	IsArmed       *bool   `json:"is_armed"`
	InExitDelay   *bool   `json:"in_exit_delay"`
	InEntryDelay  *bool   `json:"in_entry_delay"`
	SensorsOnline *int    `json:"sensors_online"`
	SensorsTotal  *int    `json:"sensors_total"`
	BridgeBattery *int    `json:"bridge_battery"`
	UptimeSeconds *int64  `json:"uptime_seconds"`

	Raw json.RawMessage `json:"-"`
}

// MetricsReport feeds the system_metrics stream.
type MetricsReport struct {
	timeparse.ReportedTime
	BridgeMAC         *string `json:"bridge_mac"`
	FreeHeap          *int64  `json:"free_heap"`
	MinFreeHeap       *int64  `json:"min_free_heap"`
	HeapFragmentation *int    `json:"heap_fragmentation"`
	WifiRSSI          *int    `json:"wifi_rssi"`
	WifiChannel       *int    `json:"wifi_channel"`
	UptimeSeconds     *int64  `json:"uptime_seconds"`
	LoopTimeUs        *int64  `json:"loop_time_us"`
	SensorsOnline     *int    `json:"sensors_online"`
	SensorsTotal      *int    `json:"sensors_total"`
	EventsQueued      *int    `json:"events_queued"`
}

// SensorStateReport merges a sensor's reported state into the
// registry. When Online is set the report is additionally written to
// the event log as a readable state snapshot; Raw then carries the
// complete request body for that record's metadata.
type SensorStateReport struct {
	BridgeMAC       *string  `json:"bridge_mac"`
	SensorMAC       *string  `json:"sensor_mac"`
	SensorName      *string  `json:"sensor_name"`
	Name            *string  `json:"name"`
	Room            *string  `json:"room"`
	IsEntryExit     *bool    `json:"is_entry_exit"`
	IsActive        *bool    `json:"is_active"`
	ContactOpen     *bool    `json:"contact_open"`
	Temperature     *float64 `json:"temperature"`
	Humidity        *float64 `json:"humidity"`
	Pressure        *float64 `json:"pressure"`
	DewPoint        *float64 `json:"dew_point"`
	BatteryLevel    *int     `json:"battery_level"`
	IsCharging      *bool    `json:"is_charging"`
	IsOnline        *bool    `json:"is_online"`
	OperationalMode *string  `json:"operational_mode"`
	BypassActive    *bool    `json:"bypass_active"`
	NightBypass     *bool    `json:"night_bypass"`
	ClimateAlert    *string  `json:"climate_alert"`

	// Snapshot-only fields reported by the bridge's periodic sensor
	// status broadcast.
	Online        *bool `json:"online"`
	Bypassed      *bool `json:"bypassed"`
	NightBypassed *bool `json:"night_bypassed"`

	Raw json.RawMessage `json:"-"`
}

// DisplayName returns the best available human-readable sensor name.
func (r *SensorStateReport) DisplayName() *string {
	if r.SensorName != nil && *r.SensorName != "" {
		return r.SensorName
	}
	return r.Name
}
