// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// LikesToggled counts like toggles by resulting action (like, unlike).
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_likes_toggled_total",
		Help: "Total number of like toggles by resulting action",
	}, []string{"action"})

	// FollowsToggled counts follow toggles by resulting action (follow, unfollow).
	FollowsToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_follows_toggled_total",
		Help: "Total number of follow toggles by resulting action",
	}, []string{"action"})

	// CommentsCreated counts created comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_comments_created_total",
		Help: "Total number of comments created",
	})

	// NotificationsWritten counts stored notifications by type.
	NotificationsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_notifications_written_total",
		Help: "Total number of notifications stored by type",
	}, []string{"type"})

	// NotificationsSuppressed counts notifications skipped because sender was recipient.
	NotificationsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_notifications_suppressed_total",
		Help: "Total number of self-addressed notifications that were skipped",
	}, []string{"type"})

	// MediaUploads counts media uploads by backend and result.
	MediaUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_media_uploads_total",
		Help: "Total number of media uploads by backend and result",
	}, []string{"backend", "result"})

	// MediaUploadLatency records upload latency by backend.
	MediaUploadLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_media_upload_latency_seconds",
		Help:    "Media upload latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"backend"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "social_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

const queryStartKey = "observability:query_start"

// RegisterDatabaseMetrics installs GORM callbacks that record the latency of
// every create, query, update, delete and raw statement.
func RegisterDatabaseMetrics(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		operation string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		operation := h.operation
		if err := h.before("metrics:before_"+operation, startQueryTimer); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+operation, func(tx *gorm.DB) {
			observeQuery(tx, operation)
		}); err != nil {
			return err
		}
	}
	return nil
}

func startQueryTimer(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func observeQuery(tx *gorm.DB, operation string) {
	v, ok := tx.InstanceGet(queryStartKey)
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
