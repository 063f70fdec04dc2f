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

const (
	defaultEventLimit    = 100
	maxEventLimit        = 1000
	defaultAlarmLimit    = 100
	maxAlarmLimit        = 500
	defaultActivityLimit = 50
	maxActivityLimit     = 200

	detailEventRows   = 50
	detailClimateRows = 24
	detailBatteryRows = 100
)

// EventsQuery narrows and pages the event log.
type EventsQuery struct {
	Sensor    string
	Room      string
	Category  string
	EventType string
	Severity  *int
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// EventsPage is one page of the event log plus the unpaged total.
type EventsPage struct {
	Total  int
	Limit  int
	Offset int
	Events []*domain.Event
}

// SensorDetail bundles a sensor's registry row with its recent
// history.
type SensorDetail struct {
	Sensor         *domain.Sensor
	RecentEvents   []map[string]any
	ClimateHistory []map[string]any
	BatteryHistory []map[string]any
}

// DailyStats aggregates activity per local-zone calendar day.
type DailyStats struct {
	Days             int
	EventsByCategory []map[string]any
	ClimateByRoom    []map[string]any
	ContactActivity  []map[string]any
}

// QueryService is the read API over the streams and registries. Limits
// are clamped here so no caller can page unbounded history.
type QueryService interface {
	Events(ctx context.Context, q EventsQuery) (*EventsPage, error)
	ClimateHistory(ctx context.Context, sensorMAC string, hours int) ([]map[string]any, error)
	BatteryHistory(ctx context.Context, deviceMAC string, days int) ([]map[string]any, error)
	Alarms(ctx context.Context, limit int) ([]*domain.AlarmEvent, error)
	Sensors(ctx context.Context) ([]*domain.Sensor, error)
	SensorDetail(ctx context.Context, mac string) (*SensorDetail, error)
	Bridges(ctx context.Context) ([]*domain.Bridge, error)
	DailyStats(ctx context.Context, days int) (*DailyStats, error)
	RecentActivity(ctx context.Context, limit int) ([]map[string]any, error)
	CurrentClimate(ctx context.Context) ([]map[string]any, error)
	DashboardSummary(ctx context.Context) (map[string]any, error)
	ExportEvents(ctx context.Context, from, to *time.Time) ([]*domain.ExportEvent, time.Time, time.Time, error)
	Health(ctx context.Context) (*domain.HealthCounts, error)
}

type queryService struct {
	history repository.HistoryRepository
	devices repository.DevicesRepository
	logger  *zap.Logger
}

func NewQueryService(history repository.HistoryRepository, devices repository.DevicesRepository, logger *zap.Logger) QueryService {
	return &queryService{history: history, devices: devices, logger: logger}
}

func (s *queryService) Events(ctx context.Context, q EventsQuery) (*EventsPage, error) {
	limit := clampLimit(q.Limit, defaultEventLimit, maxEventLimit)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	filters := repository.EventFilters{
		Sensor:    q.Sensor,
		Room:      q.Room,
		Category:  q.Category,
		EventType: q.EventType,
		Severity:  q.Severity,
		From:      q.From,
		To:        q.To,
	}
	events, total, err := s.history.ListEvents(ctx, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return &EventsPage{Total: total, Limit: limit, Offset: offset, Events: events}, nil
}

func (s *queryService) ClimateHistory(ctx context.Context, sensorMAC string, hours int) ([]map[string]any, error) {
	if hours <= 0 {
		hours = 24
	}
	return s.history.ClimateHistory(ctx, normalizedMAC(sensorMAC), hours)
}

func (s *queryService) BatteryHistory(ctx context.Context, deviceMAC string, days int) ([]map[string]any, error) {
	if days <= 0 {
		days = 7
	}
	return s.history.BatteryHistory(ctx, normalizedMAC(deviceMAC), days)
}

func (s *queryService) Alarms(ctx context.Context, limit int) ([]*domain.AlarmEvent, error) {
	return s.history.ListAlarms(ctx, clampLimit(limit, defaultAlarmLimit, maxAlarmLimit))
}

func (s *queryService) Sensors(ctx context.Context) ([]*domain.Sensor, error) {
	return s.devices.ListSensors(ctx)
}

func (s *queryService) SensorDetail(ctx context.Context, mac string) (*SensorDetail, error) {
	mac = normalizedMAC(mac)

	sensor, err := s.devices.GetSensor(ctx, mac)
	if err != nil {
		return nil, err
	}

	events, err := s.history.SensorEvents(ctx, mac, detailEventRows)
	if err != nil {
		return nil, fmt.Errorf("sensor events: %w", err)
	}
	climate, err := s.history.SensorClimate(ctx, mac, detailClimateRows)
	if err != nil {
		return nil, fmt.Errorf("sensor climate: %w", err)
	}
	battery, err := s.history.SensorBattery(ctx, mac, detailBatteryRows)
	if err != nil {
		return nil, fmt.Errorf("sensor battery: %w", err)
	}

	return &SensorDetail{
		Sensor:         sensor,
		RecentEvents:   events,
		ClimateHistory: climate,
		BatteryHistory: battery,
	}, nil
}

func (s *queryService) Bridges(ctx context.Context) ([]*domain.Bridge, error) {
	return s.devices.ListBridges(ctx)
}

func (s *queryService) DailyStats(ctx context.Context, days int) (*DailyStats, error) {
	if days <= 0 {
		days = 7
	}

	byCategory, err := s.history.EventsByDay(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("events by day: %w", err)
	}
	byRoom, err := s.history.ClimateByRoomDaily(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("climate by room: %w", err)
	}
	contact, err := s.history.ContactActivityDaily(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("contact activity: %w", err)
	}

	return &DailyStats{
		Days:             days,
		EventsByCategory: byCategory,
		ClimateByRoom:    byRoom,
		ContactActivity:  contact,
	}, nil
}

func (s *queryService) RecentActivity(ctx context.Context, limit int) ([]map[string]any, error) {
	return s.history.RecentActivity(ctx, clampLimit(limit, defaultActivityLimit, maxActivityLimit))
}

func (s *queryService) CurrentClimate(ctx context.Context) ([]map[string]any, error) {
	return s.history.CurrentClimate(ctx)
}

func (s *queryService) DashboardSummary(ctx context.Context) (map[string]any, error) {
	return s.history.DashboardSummary(ctx)
}

// ExportEvents resolves the export window, defaulting to the last
// seven days, and returns the rows with the resolved bounds.
func (s *queryService) ExportEvents(ctx context.Context, from, to *time.Time) ([]*domain.ExportEvent, time.Time, time.Time, error) {
	end := time.Now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -7)
	if from != nil {
		start = *from
	}

	rows, err := s.history.ExportEvents(ctx, start, end)
	if err != nil {
		return nil, start, end, fmt.Errorf("export events: %w", err)
	}
	s.logger.Info("Events exported",
		zap.Int("rows", len(rows)),
		zap.Time("from", start),
		zap.Time("to", end))
	return rows, start, end, nil
}

func (s *queryService) Health(ctx context.Context) (*domain.HealthCounts, error) {
	return s.history.HealthCounts(ctx)
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func normalizedMAC(mac string) string {
	return strings.ToUpper(strings.TrimSpace(mac))
}
