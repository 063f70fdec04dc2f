// Package timeparse normalizes device-asserted timestamps into
// zone-aware instants. Field devices report wall-clock time in several
// shapes (ISO-8601 strings, epoch seconds, epoch milliseconds) and
// under several field names; everything here is best-effort, with nil
// meaning "no usable device time".
package timeparse

import (
	"strings"
	"time"
)

// Epoch values above this threshold are treated as milliseconds,
// anything at or below as seconds.
const millisThreshold = 1e12

// Naive layouts, tried in order after the offset-aware RFC 3339 form.
// A fractional second suffix is optional in the first two.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ReportedTime captures a device-asserted timestamp under any of its
// accepted field names. It is embedded by the per-stream report
// payloads so all ingestion endpoints accept the same synonyms.
type ReportedTime struct {
	DeviceTime any `json:"device_time,omitempty"`
	Timestamp  any `json:"timestamp,omitempty"`
	EventTime  any `json:"event_time,omitempty"`
}

// Value returns the first usable field following the precedence
// device_time, timestamp, event_time. Empty strings and zero numbers
// count as unset, so a zeroed field never shadows a later synonym.
func (r ReportedTime) Value() any {
	for _, v := range []any{r.DeviceTime, r.Timestamp, r.EventTime} {
		if !isEmpty(v) {
			return v
		}
	}
	return nil
}

// Normalize resolves the reported time against loc. Nil means absent
// or unparseable.
func (r ReportedTime) Normalize(loc *time.Location) *time.Time {
	return Normalize(r.Value(), loc)
}

// Normalize converts a raw timestamp value into a zone-aware instant.
//
// Strings are parsed as ISO-8601: an explicit offset (or trailing Z)
// is honored, a naive timestamp is interpreted in loc. Numbers are
// epoch values, milliseconds when above 1e12, otherwise seconds, and
// resolve to UTC. Anything else, including values that fail to parse,
// yields nil rather than an error so a malformed device clock never
// rejects a record.
func Normalize(v any, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.UTC
	}

	switch t := v.(type) {
	case string:
		return parseString(t, loc)
	case float64:
		return fromEpoch(t)
	case int:
		return fromEpoch(float64(t))
	case int64:
		return fromEpoch(float64(t))
	case time.Time:
		return &t
	case *time.Time:
		return t
	default:
		return nil
	}
}

func parseString(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

func fromEpoch(v float64) *time.Time {
	if v > millisThreshold {
		t := time.UnixMilli(int64(v)).UTC()
		return &t
	}
	sec := int64(v)
	nsec := int64((v - float64(sec)) * 1e9)
	t := time.Unix(sec, nsec).UTC()
	return &t
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	default:
		return false
	}
}
