package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	metricsdb "family-planner/internal/metrics/metrics_db"
)

// SyncRun records the outcome of one shopping-list sync.
type SyncRun struct {
	FamilyID   string
	WeekStart  string
	Aggregated int
	Upserted   int
	Deleted    int
	LatencyMS  int64
	Timestamp  time.Time
}

// Store handles persistence of sync history to SQLite.
type Store struct {
	queries *metricsdb.Queries
	db      *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		queries: metricsdb.New(db),
		db:      db,
	}
}

// Record saves a sync run to the database.
func (s *Store) Record(ctx context.Context, r SyncRun) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	err := s.queries.InsertSyncRun(ctx, metricsdb.InsertSyncRunParams{
		FamilyID:   r.FamilyID,
		WeekStart:  r.WeekStart,
		Aggregated: int64(r.Aggregated),
		Upserted:   int64(r.Upserted),
		Deleted:    int64(r.Deleted),
		LatencyMs:  r.LatencyMS,
		Timestamp:  ts.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// DailySyncs represents sync totals for a single day.
type DailySyncs struct {
	Date         string
	Runs         int
	Upserted     int
	Deleted      int
	AvgLatencyMS float64
}

// GetDailySyncs retrieves sync totals for the last N days, newest first.
func (s *Store) GetDailySyncs(ctx context.Context, days int) ([]DailySyncs, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.queries.GetDailySyncs(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily syncs: %w", err)
	}

	var results []DailySyncs
	for _, r := range rows {
		d := DailySyncs{
			Runs: int(r.Count),
		}

		switch day := r.Day.(type) {
		case string:
			d.Date = day
		case []byte:
			d.Date = string(day)
		default:
			d.Date = "Unknown"
		}

		if r.Sum.Valid {
			d.Upserted = int(r.Sum.Float64)
		}
		if r.Sum_2.Valid {
			d.Deleted = int(r.Sum_2.Float64)
		}
		if r.Avg.Valid {
			d.AvgLatencyMS = r.Avg.Float64
		}

		results = append(results, d)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	n, err := s.queries.CleanupSyncRuns(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sync runs: %w", err)
	}
	return n, nil
}
