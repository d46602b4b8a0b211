// Package analytics records and aggregates notification delivery and
// open events.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbitlive/transit-notifier/internal/db"
	"github.com/orbitlive/transit-notifier/internal/metrics"
)

// Store is the persistence layer for analytics events.
type Store interface {
	InsertAnalyticsEvent(ctx context.Context, event *db.AnalyticsEvent) error
	AnalyticsSummarySince(ctx context.Context, cutoff time.Time) (map[string]db.CategorySummary, error)
}

// DefaultWindowDays is the query window used when a caller passes no
// explicit value.
const DefaultWindowDays = 30

// Recorder appends events and serves windowed aggregates. Events are
// append-only; every event carries a non-empty category and exactly one
// outcome flag.
type Recorder struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Delivered appends a delivery event stamped with the recorder's clock.
func (r *Recorder) Delivered(ctx context.Context, userID uuid.UUID, category string) error {
	if category == "" {
		return fmt.Errorf("analytics event requires a category")
	}

	event := &db.AnalyticsEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  category,
		Timestamp: r.now(),
		Delivered: true,
	}

	if err := r.store.InsertAnalyticsEvent(ctx, event); err != nil {
		return err
	}

	metrics.RecordAnalyticsEvent("delivered")
	return nil
}

// Opened appends an open event with a caller-supplied timestamp (the
// moment the client reported). Opens are never deduplicated; every call
// appends.
func (r *Recorder) Opened(ctx context.Context, userID uuid.UUID, category string, at time.Time) error {
	if category == "" {
		return fmt.Errorf("analytics event requires a category")
	}

	event := &db.AnalyticsEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  category,
		Timestamp: at,
		Opened:    true,
	}

	if err := r.store.InsertAnalyticsEvent(ctx, event); err != nil {
		return err
	}

	metrics.RecordAnalyticsEvent("opened")
	return nil
}

// Summary aggregates events from the trailing window. The cutoff is
// inclusive: an event exactly windowDays old is counted.
func (r *Recorder) Summary(ctx context.Context, windowDays int) (map[string]db.CategorySummary, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	cutoff := r.now().AddDate(0, 0, -windowDays)
	return r.store.AnalyticsSummarySince(ctx, cutoff)
}
