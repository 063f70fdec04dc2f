package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// streamTables are the append-only stream tables the sweeper and the
// storage stats endpoint operate on. Table names are interpolated into
// SQL, so everything must go through this allowlist.
var streamTables = []string{
	"event_log",
	"climate_readings",
	"battery_readings",
	"alarm_events",
	"system_metrics",
}

type PostgresAdminRepo struct {
	db     *sql.DB
	loc    *time.Location
	logger *zap.Logger
}

func NewPostgresAdminRepo(db *sql.DB, loc *time.Location, logger *zap.Logger) *PostgresAdminRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresAdminRepo{db: db, loc: loc, logger: logger}
}

func isStreamTable(name string) bool {
	for _, t := range streamTables {
		if t == name {
			return true
		}
	}
	return false
}

// SweepStream deletes records older than the cutoff, keyed by
// ingestion time. Deleting by created_at keeps the sweep idempotent:
// a second run over the same cutoff finds nothing left to remove.
func (r *PostgresAdminRepo) SweepStream(ctx context.Context, stream string, olderThanDays int) (int64, error) {
	if !isStreamTable(stream) {
		return 0, fmt.Errorf("unknown stream table: %s", stream)
	}
	if olderThanDays <= 0 {
		return 0, nil
	}

	query := fmt.Sprintf(
		`DELETE FROM %s WHERE created_at < NOW() - ($1 || ' days')::INTERVAL`, stream)
	res, err := r.db.ExecContext(ctx, query, strconv.Itoa(olderThanDays))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep %s: %w", stream, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		r.logger.Info("Retention sweep deleted records",
			zap.String("stream", stream),
			zap.Int("older_than_days", olderThanDays),
			zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (r *PostgresAdminRepo) TableStats(ctx context.Context) ([]map[string]any, error) {
	query := `
		SELECT relname, n_live_tup, pg_size_pretty(pg_total_relation_size(relid))
		FROM pg_stat_user_tables
		ORDER BY pg_total_relation_size(relid) DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table stats: %w", err)
	}
	defer rows.Close()

	out := []map[string]any{}
	for rows.Next() {
		var name, size string
		var liveRows int64
		if err := rows.Scan(&name, &liveRows, &size); err != nil {
			return nil, fmt.Errorf("failed to scan table stats: %w", err)
		}
		out = append(out, map[string]any{
			"table_name": name,
			"row_count":  liveRows,
			"total_size": size,
		})
	}
	return out, rows.Err()
}

func (r *PostgresAdminRepo) OldestRecords(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	for _, table := range streamTables {
		query := fmt.Sprintf(`SELECT MIN(created_at) FROM %s`, table)
		var oldest sql.NullTime
		if err := r.db.QueryRowContext(ctx, query).Scan(&oldest); err != nil {
			r.logger.Debug("oldest record lookup failed",
				zap.String("table", table), zap.Error(err))
			continue
		}
		if oldest.Valid {
			out[table] = oldest.Time.In(r.loc).Format(time.RFC3339)
		}
	}
	return out, nil
}
