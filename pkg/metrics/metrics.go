package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)

	// 慢查询计数
	DBSlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"operation"},
	)

	// 习惯打卡切换
	HabitToggleCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_toggle_total",
			Help: "Total number of habit completion toggles",
		},
		[]string{"result"}, // result: completed, uncompleted
	)

	// 单次任务事件
	TaskEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "single_task_event_total",
			Help: "Total number of single task writes",
		},
		[]string{"event"}, // event: created, toggled, deleted
	)

	// Summary 缓存命中
	SummaryCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_total",
			Help: "Summary cache lookups by outcome",
		},
		[]string{"outcome"}, // outcome: hit, miss, error
	)

	// Outbox 发布结果
	OutboxPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_publish_total",
			Help: "Outbox events published to the broker by outcome",
		},
		[]string{"routing_key", "status"}, // status: sent, failed
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery(operation string) {
	DBSlowQueryCount.WithLabelValues(operation).Inc()
}

// IncrementHabitToggle 记录一次习惯打卡切换
func IncrementHabitToggle(completed bool) {
	result := "uncompleted"
	if completed {
		result = "completed"
	}
	HabitToggleCount.WithLabelValues(result).Inc()
}

// IncrementTaskEvent 记录单次任务写入
func IncrementTaskEvent(event string) {
	TaskEventCount.WithLabelValues(event).Inc()
}

// IncrementSummaryCache 记录 summary 缓存查询结果
func IncrementSummaryCache(outcome string) {
	SummaryCacheCount.WithLabelValues(outcome).Inc()
}

// IncrementOutboxPublish 记录 outbox 发布结果
func IncrementOutboxPublish(routingKey, status string) {
	OutboxPublishCount.WithLabelValues(routingKey, status).Inc()
}
