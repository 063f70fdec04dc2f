package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"homesentry-data/internal/domain"
	"homesentry-data/internal/repository"
)

// IngestService accepts device reports, normalizes their timestamps
// and identity keys, and hands them to the telemetry repository. A
// report is either rejected up front with a ValidationError or
// appended; duplicate submissions are appended again, never rejected.
type IngestService interface {
	LogEvent(ctx context.Context, rep *domain.EventReport) (*repository.AppendResult, error)
	LogClimate(ctx context.Context, rep *domain.ClimateReport) (*repository.AppendResult, error)
	LogBattery(ctx context.Context, rep *domain.BatteryReport) (*repository.AppendResult, error)
	LogAlarm(ctx context.Context, rep *domain.AlarmReport) (*repository.AppendResult, error)
	LogBridgeState(ctx context.Context, rep *domain.BridgeStateReport) (*repository.AppendResult, error)
	LogMetrics(ctx context.Context, rep *domain.MetricsReport) (*repository.AppendResult, error)

	// SensorState routes a sensor status report: with an "online"
	// field it becomes an audit snapshot in the event log (result
	// non-nil), otherwise it merges into the registry (result nil).
	SensorState(ctx context.Context, rep *domain.SensorStateReport) (*repository.AppendResult, error)
}

type ingestService struct {
	repo   repository.TelemetryRepository
	pub    *EventPublisher
	loc    *time.Location
	logger *zap.Logger
}

// NewIngestService wires the ingestion pipeline. pub may be nil when
// stream fan-out is disabled.
func NewIngestService(repo repository.TelemetryRepository, pub *EventPublisher, loc *time.Location, logger *zap.Logger) IngestService {
	if loc == nil {
		loc = time.UTC
	}
	return &ingestService{repo: repo, pub: pub, loc: loc, logger: logger}
}

func (s *ingestService) LogEvent(ctx context.Context, rep *domain.EventReport) (*repository.AppendResult, error) {
	normalizeMAC(rep.BridgeMAC)
	normalizeMAC(rep.SensorMAC)
	if !hasMAC(rep.BridgeMAC) {
		return nil, validationErr("bridge_mac is required")
	}

	res, err := s.repo.LogEvent(ctx, rep, rep.ReportedTime.Normalize(s.loc))
	if err != nil {
		return nil, fmt.Errorf("log event: %w", err)
	}

	s.logger.Info("Event logged",
		zap.Int64("id", res.ID),
		zap.Stringp("event_type", rep.EventType),
		zap.Stringp("sensor_name", rep.SensorName))
	s.fanOut(ctx, "event", res, *rep.BridgeMAC)
	return res, nil
}

func (s *ingestService) LogClimate(ctx context.Context, rep *domain.ClimateReport) (*repository.AppendResult, error) {
	normalizeMAC(rep.SensorMAC)
	if !hasMAC(rep.SensorMAC) {
		return nil, validationErr("sensor_mac is required")
	}

	res, err := s.repo.LogClimate(ctx, rep, rep.ReportedTime.Normalize(s.loc))
	if err != nil {
		return nil, fmt.Errorf("log climate: %w", err)
	}

	s.logger.Debug("Climate reading logged",
		zap.Int64("id", res.ID),
		zap.String("sensor_mac", *rep.SensorMAC))
	s.fanOut(ctx, "climate", res, *rep.SensorMAC)
	return res, nil
}

func (s *ingestService) LogBattery(ctx context.Context, rep *domain.BatteryReport) (*repository.AppendResult, error) {
	normalizeMAC(rep.DeviceMAC)
	if !hasMAC(rep.DeviceMAC) {
		return nil, validationErr("device_mac is required")
	}
	if rep.DeviceType == nil {
		deviceType := "sensor"
		rep.DeviceType = &deviceType
	}

	res, err := s.repo.LogBattery(ctx, rep, rep.ReportedTime.Normalize(s.loc))
	if err != nil {
		return nil, fmt.Errorf("log battery: %w", err)
	}

	s.logger.Debug("Battery reading logged",
		zap.Int64("id", res.ID),
		zap.String("device_mac", *rep.DeviceMAC))
	s.fanOut(ctx, "battery", res, *rep.DeviceMAC)
	return res, nil
}

func (s *ingestService) LogAlarm(ctx context.Context, rep *domain.AlarmReport) (*repository.AppendResult, error) {
	normalizeMAC(rep.BridgeMAC)
	normalizeMAC(rep.TriggerSensor)
	if !hasMAC(rep.BridgeMAC) {
		return nil, validationErr("bridge_mac is required")
	}

	res, err := s.repo.LogAlarm(ctx, rep, rep.ReportedTime.Normalize(s.loc))
	if err != nil {
		return nil, fmt.Errorf("log alarm: %w", err)
	}

	s.logger.Info("Alarm event logged",
		zap.Int64("id", res.ID),
		zap.Stringp("event_type", rep.EventType),
		zap.Stringp("alarm_mode", rep.AlarmMode))
	s.fanOut(ctx, "alarm", res, *rep.BridgeMAC)
	return res, nil
}

func (s *ingestService) LogBridgeState(ctx context.Context, rep *domain.BridgeStateReport) (*repository.AppendResult, error) {
	normalizeMAC(rep.BridgeMAC)
	if !hasMAC(rep.BridgeMAC) {
		return nil, validationErr("bridge_mac is required")
	}

	res, err := s.repo.LogBridgeState(ctx, rep, bridgeStateMessage(rep))
	if err != nil {
		return nil, fmt.Errorf("log bridge state: %w", err)
	}

	s.logger.Info("Bridge state logged",
		zap.Int64("id", res.ID),
		zap.Stringp("alarm_mode", rep.AlarmModeName))
	s.fanOut(ctx, "state", res, *rep.BridgeMAC)
	return res, nil
}

func (s *ingestService) LogMetrics(ctx context.Context, rep *domain.MetricsReport) (*repository.AppendResult, error) {
	normalizeMAC(rep.BridgeMAC)
	if !hasMAC(rep.BridgeMAC) {
		return nil, validationErr("bridge_mac is required")
	}

	res, err := s.repo.LogMetrics(ctx, rep, rep.ReportedTime.Normalize(s.loc))
	if err != nil {
		return nil, fmt.Errorf("log metrics: %w", err)
	}

	s.logger.Debug("Metrics sample logged",
		zap.Int64("id", res.ID),
		zap.String("bridge_mac", *rep.BridgeMAC))
	s.fanOut(ctx, "metrics", res, *rep.BridgeMAC)
	return res, nil
}

func (s *ingestService) SensorState(ctx context.Context, rep *domain.SensorStateReport) (*repository.AppendResult, error) {
	normalizeMAC(rep.SensorMAC)
	normalizeMAC(rep.BridgeMAC)
	if !hasMAC(rep.SensorMAC) {
		return nil, validationErr("sensor_mac is required")
	}

	if rep.Online != nil {
		res, err := s.repo.LogSensorSnapshot(ctx, rep, sensorSnapshotMessage(rep))
		if err != nil {
			return nil, fmt.Errorf("log sensor snapshot: %w", err)
		}
		s.logger.Debug("Sensor snapshot logged",
			zap.Int64("id", res.ID),
			zap.String("sensor_mac", *rep.SensorMAC))
		s.fanOut(ctx, "sensor-state", res, *rep.SensorMAC)
		return res, nil
	}

	if err := s.repo.MergeSensorState(ctx, rep); err != nil {
		return nil, fmt.Errorf("merge sensor state: %w", err)
	}
	s.logger.Debug("Sensor state merged", zap.String("sensor_mac", *rep.SensorMAC))
	return nil, nil
}

// fanOut publishes an append notification to the Redis stream when a
// publisher is configured. Fan-out is best effort: a publish failure
// never fails the already-committed ingest.
func (s *ingestService) fanOut(ctx context.Context, stream string, res *repository.AppendResult, mac string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, stream, res.ID, mac, res.LocalTime); err != nil {
		s.logger.Warn("Stream fan-out failed",
			zap.String("stream", stream),
			zap.Int64("id", res.ID),
			zap.Error(err))
	}
}

// bridgeStateMessage renders the audit line for a bridge state
// snapshot.
func bridgeStateMessage(rep *domain.BridgeStateReport) string {
	mode := "unknown"
	if rep.AlarmModeName != nil && *rep.AlarmModeName != "" {
		mode = *rep.AlarmModeName
	}
	return fmt.Sprintf("State: %s | Armed: %v | Exit: %v | Entry: %v | Sensors: %d/%d",
		mode, boolVal(rep.IsArmed), boolVal(rep.InExitDelay), boolVal(rep.InEntryDelay),
		intVal(rep.SensorsOnline), intVal(rep.SensorsTotal))
}

// sensorSnapshotMessage renders the audit line for a sensor status
// snapshot.
func sensorSnapshotMessage(rep *domain.SensorStateReport) string {
	name := "Sensor"
	if rep.SensorName != nil && *rep.SensorName != "" {
		name = *rep.SensorName
	}
	room := "Unknown"
	if rep.Room != nil && *rep.Room != "" {
		room = *rep.Room
	}
	online := "OFFLINE"
	if boolVal(rep.Online) {
		online = "Online"
	}
	contact := "closed"
	if boolVal(rep.ContactOpen) {
		contact = "OPEN"
	}
	return fmt.Sprintf("%s @ %s | %s | Contact: %s | Bypass: %v | Night: %v | T:%.1fC H:%.0f%% | Bat:%d%%",
		name, room, online, contact, boolVal(rep.Bypassed), boolVal(rep.NightBypassed),
		floatVal(rep.Temperature), floatVal(rep.Humidity), intVal(rep.BatteryLevel))
}

// normalizeMAC upper-cases and trims an identity key in place so the
// same device never splits into multiple registry rows over case.
func normalizeMAC(mac *string) {
	if mac == nil {
		return
	}
	*mac = strings.ToUpper(strings.TrimSpace(*mac))
}

func hasMAC(mac *string) bool {
	return mac != nil && *mac != ""
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func floatVal(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
