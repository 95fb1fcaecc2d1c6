package metrics

import (
	"context"
	"log/slog"

	"family-planner/internal/shopping"
)

// Recorder feeds sync reports into the Prometheus metrics and the sync
// history. Either sink may be nil.
type Recorder struct {
	metrics *ShoppingMetrics
	store   *Store
	logger  *slog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(m *ShoppingMetrics, store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{metrics: m, store: store, logger: logger.With("component", "metrics")}
}

var _ shopping.SyncObserver = (*Recorder)(nil)

// ObserveSync records report. History write failures are logged only.
func (r *Recorder) ObserveSync(ctx context.Context, report shopping.SyncReport) {
	if r.metrics != nil {
		r.metrics.syncDuration.Observe(report.Duration.Seconds())
		r.metrics.syncItemsTotal.WithLabelValues("aggregated").Add(float64(report.Aggregated))
		r.metrics.syncItemsTotal.WithLabelValues("upserted").Add(float64(report.Upserted))
		r.metrics.syncItemsTotal.WithLabelValues("unchanged").Add(float64(report.Unchanged))
		r.metrics.syncItemsTotal.WithLabelValues("deleted").Add(float64(report.Deleted))
		r.metrics.syncItemsTotal.WithLabelValues("delete_failed").Add(float64(report.DeleteFailures))
	}
	if r.store == nil {
		return
	}
	err := r.store.Record(ctx, SyncRun{
		FamilyID:   report.FamilyID,
		WeekStart:  report.WeekStart,
		Aggregated: report.Aggregated,
		Upserted:   report.Upserted,
		Deleted:    report.Deleted,
		LatencyMS:  report.Duration.Milliseconds(),
	})
	if err != nil {
		r.logger.Warn("failed to record sync run", "family_id", report.FamilyID, "error", err)
	}
}
