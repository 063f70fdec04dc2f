package repository

import "context"

// AdminRepository backs the retention sweeper and the storage
// statistics endpoint.
type AdminRepository interface {
	// SweepStream deletes records of one stream older than the given
	// number of days, keyed by ingestion time. The stream name must be
	// one of the known stream tables.
	SweepStream(ctx context.Context, stream string, olderThanDays int) (int64, error)

	// TableStats reports live row counts and on-disk sizes per table.
	TableStats(ctx context.Context) ([]map[string]any, error)

	// OldestRecords reports the oldest ingestion timestamp per stream
	// table, as local-zone ISO strings.
	OldestRecords(ctx context.Context) (map[string]string, error)
}
