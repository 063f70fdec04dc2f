package domain

import (
	"time"
)

// Sensor is the current known state of an environmental sensor
// (corresponds to the sensors table). Rows are created on first report
// and updated by sparse merges, so most columns are nullable.
type Sensor struct {
	MACAddress      string     `json:"mac_address" db:"mac_address"`
	BridgeMAC       *string    `json:"bridge_mac" db:"bridge_mac"`
	Name            *string    `json:"name" db:"name"`
	Room            *string    `json:"room" db:"room"`
	IsEntryExit     bool       `json:"is_entry_exit" db:"is_entry_exit"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	ContactOpen     *bool      `json:"contact_open" db:"contact_open"`
	Temperature     *float64   `json:"temperature" db:"temperature"`
	Humidity        *float64   `json:"humidity" db:"humidity"`
	Pressure        *float64   `json:"pressure" db:"pressure"`
	DewPoint        *float64   `json:"dew_point" db:"dew_point"`
	BatteryLevel    *int       `json:"battery_level" db:"battery_level"`
	IsCharging      *bool      `json:"is_charging" db:"is_charging"`
	IsOnline        bool       `json:"is_online" db:"is_online"`
	OperationalMode string     `json:"operational_mode" db:"operational_mode"` // normal, maintenance, disabled
	BypassActive    bool       `json:"bypass_active" db:"bypass_active"`
	NightBypass     bool       `json:"night_bypass" db:"night_bypass"`
	ClimateAlert    string     `json:"climate_alert" db:"climate_alert"` // ok, warning, critical
	LastSeen        *time.Time `json:"last_seen" db:"last_seen"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// Bridge is the current known state of a coordinating bridge
// (corresponds to the bridges table).
type Bridge struct {
	MACAddress     string     `json:"mac_address" db:"mac_address"`
	Name           *string    `json:"name" db:"name"`
	AlarmMode      *string    `json:"alarm_mode" db:"alarm_mode"`
	IsArmed        bool       `json:"is_armed" db:"is_armed"`
	BatteryLevel   *int       `json:"battery_level" db:"battery_level"`
	BatteryVoltage *float64   `json:"battery_voltage" db:"battery_voltage"`
	FreeHeap       *int64     `json:"free_heap" db:"free_heap"`
	UptimeSeconds  *int64     `json:"uptime_seconds" db:"uptime_seconds"`
	IsOnline       bool       `json:"is_online" db:"is_online"`
	LastSeen       *time.Time `json:"last_seen" db:"last_seen"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
