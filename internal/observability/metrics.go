// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostViews counts recorded post detail views.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_post_views_total",
		Help: "Total number of recorded post views",
	})

	// CommentsSubmitted counts submitted comments by outcome.
	CommentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_comments_submitted_total",
		Help: "Total number of submitted comments by outcome",
	}, []string{"outcome"})

	// ModerationActions counts moderation decisions by action.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_moderation_actions_total",
		Help: "Total number of moderation actions by action",
	}, []string{"action"})

	// NewsletterSignups counts newsletter subscribe and unsubscribe events.
	NewsletterSignups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_newsletter_events_total",
		Help: "Total number of newsletter subscription events by kind",
	}, []string{"kind"})
)

const queryStartKey = "observability:query_start"

// InstrumentGORM registers callbacks that feed DatabaseQueryLatency for every
// create, query, update, delete, row and raw operation.
func InstrumentGORM(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.Set(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.Get(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	registrations := []struct {
		operation string
		before    func(string, func(*gorm.DB)) error
		after     func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, r := range registrations {
		if err := r.before("observability:before_"+r.operation, before); err != nil {
			return err
		}
		if err := r.after("observability:after_"+r.operation, after(r.operation)); err != nil {
			return err
		}
	}
	return nil
}
