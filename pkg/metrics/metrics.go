package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bezs"

var (
	// GuardDecisions 访问守卫判定次数
	GuardDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rbac",
			Name:      "guard_decisions_total",
			Help:      "Access guard decisions by check and outcome.",
		},
		[]string{"check", "outcome"},
	)

	// MappingOperations 映射操作结果，result 为 ok 或错误类别
	MappingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rbac",
			Name:      "mapping_operations_total",
			Help:      "Mapping operations by operation and result kind.",
		},
		[]string{"operation", "result"},
	)

	// ResolveDuration 权限解析耗时
	ResolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rbac",
		Name:      "resolve_duration_seconds",
		Help:      "Permission resolution latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	// OrphanedRows 最近一次巡检发现的孤立关联数
	OrphanedRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rbac",
			Name:      "orphaned_rows",
			Help:      "Orphaned join rows found by the last consistency sweep.",
		},
		[]string{"table"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "pattern", "status"},
	)
)

var registerOnce sync.Once

// Register 注册到默认注册表，重复调用无副作用
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(GuardDecisions, MappingOperations, ResolveDuration, OrphanedRows, httpRequestDuration)
	})
}

// Handler Prometheus 抓取端点
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// GinMiddleware 记录请求耗时，pattern 使用命中的路由
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		pattern := c.FullPath()
		if pattern == "" {
			pattern = "unmatched"
		}
		httpRequestDuration.
			WithLabelValues(c.Request.Method, pattern, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveMapping 记录一次映射操作
func ObserveMapping(operation, result string) {
	MappingOperations.WithLabelValues(operation, result).Inc()
}

// ObserveGuard 记录一次守卫判定
func ObserveGuard(check string, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	GuardDecisions.WithLabelValues(check, outcome).Inc()
}
