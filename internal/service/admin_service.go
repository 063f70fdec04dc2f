package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"homesentry-data/internal/config"
	"homesentry-data/internal/repository"
)

// sweepPlan maps each stream table to its retention class. The data
// class covers the high-volume measurement streams, security covers
// alarm history, audit covers the event log.
var sweepPlan = []struct {
	Stream string
	Class  string
}{
	{"climate_readings", "data"},
	{"battery_readings", "data"},
	{"system_metrics", "data"},
	{"alarm_events", "security"},
	{"event_log", "audit"},
}

// CleanupResult reports one sweeper run. Streams with retention
// disabled (zero days) have no entry in Deleted.
type CleanupResult struct {
	Deleted map[string]int64
	Total   int64
}

// AdminService owns retention and storage management.
type AdminService interface {
	RetentionSettings() map[string]any
	Cleanup(ctx context.Context) (*CleanupResult, error)
	StorageStats(ctx context.Context) (map[string]any, error)
}

type adminService struct {
	repo      repository.AdminRepository
	retention config.RetentionConfig
	logger    *zap.Logger
}

func NewAdminService(repo repository.AdminRepository, retention config.RetentionConfig, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, retention: retention, logger: logger}
}

func (s *adminService) RetentionSettings() map[string]any {
	return map[string]any{
		"retention_settings": map[string]any{
			"data_retention_days": map[string]any{
				"value":       s.retention.DataDays,
				"description": "Climate, battery and metrics readings",
			},
			"security_retention_days": map[string]any{
				"value":       s.retention.SecurityDays,
				"description": "Alarm events",
			},
			"audit_retention_days": map[string]any{
				"value":       s.retention.AuditDays,
				"description": "Event log",
			},
		},
		"note": "0 = keep forever",
	}
}

// Cleanup sweeps every stream past its retention window. Each stream
// is swept independently: a failure aborts only that stream's pass and
// the already committed deletes stand, which is safe because the sweep
// is idempotent.
func (s *adminService) Cleanup(ctx context.Context) (*CleanupResult, error) {
	res := &CleanupResult{Deleted: map[string]int64{}}
	failed := []string{}

	for _, p := range sweepPlan {
		days := s.daysFor(p.Class)
		if days <= 0 {
			continue
		}

		deleted, err := s.repo.SweepStream(ctx, p.Stream, days)
		if err != nil {
			s.logger.Error("Retention sweep failed",
				zap.String("stream", p.Stream),
				zap.Error(err))
			failed = append(failed, p.Stream)
			continue
		}
		res.Deleted[p.Stream] = deleted
		res.Total += deleted
	}

	if len(failed) > 0 {
		return res, fmt.Errorf("sweep failed for: %s", strings.Join(failed, ", "))
	}

	s.logger.Info("Retention cleanup finished", zap.Int64("total_deleted", res.Total))
	return res, nil
}

func (s *adminService) StorageStats(ctx context.Context) (map[string]any, error) {
	tables, err := s.repo.TableStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("table stats: %w", err)
	}
	oldest, err := s.repo.OldestRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("oldest records: %w", err)
	}

	return map[string]any{
		"tables":         tables,
		"oldest_records": oldest,
		"retention_settings": map[string]int{
			"data_retention_days":     s.retention.DataDays,
			"security_retention_days": s.retention.SecurityDays,
			"audit_retention_days":    s.retention.AuditDays,
		},
	}, nil
}

func (s *adminService) daysFor(class string) int {
	switch class {
	case "data":
		return s.retention.DataDays
	case "security":
		return s.retention.SecurityDays
	case "audit":
		return s.retention.AuditDays
	default:
		return 0
	}
}
