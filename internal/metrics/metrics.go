// Package metrics 众筹服务的 Prometheus 指标
package metrics

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/blues/smartfunding/internal/funding"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartfunding"

var (
	// Registry 应用自己的指标注册表
	Registry = prometheus.NewRegistry()

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "operations_total",
			Help:      "Total number of pool operations by result.",
		},
		[]string{"operation", "result"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "operation_duration_seconds",
			Help:      "Duration of pool operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
		[]string{"operation"},
	)

	events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "emitted_total",
			Help:      "Total number of pool events dispatched.",
		},
		[]string{"kind"},
	)

	handlerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "handler_errors_total",
			Help:      "Total number of event handler failures.",
		},
		[]string{"handler"},
	)

	poolBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "balance_wei",
			Help:      "Native value currently held by the pool.",
		},
	)

	poolInvestors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "investors",
			Help:      "Number of accounts with a positive contribution.",
		},
	)

	poolStage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "stage",
			Help:      "Current stage: 0 created, 1 funding, 2 success, 3 failed.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		operations,
		operationDuration,
		events,
		handlerErrors,
		poolBalance,
		poolInvestors,
		poolStage,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler 暴露 Registry 中的指标
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordOperation 记录一次池操作的结果和耗时
func RecordOperation(operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	operations.WithLabelValues(operation, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordEvent 记录一个已分发的事件
func RecordEvent(kind funding.EventKind) {
	events.WithLabelValues(string(kind)).Inc()
}

// RecordHandlerError 记录事件处理失败
func RecordHandlerError(handler string) {
	handlerErrors.WithLabelValues(handler).Inc()
}

// ObservePool 同步池状态到 gauge
func ObservePool(s funding.Summary) {
	balance, _ := new(big.Float).SetInt(s.Pool).Float64()
	poolBalance.Set(balance)
	poolInvestors.Set(float64(s.InvestorCount))
	poolStage.Set(float64(s.Stage))
}

// GinMiddleware HTTP 请求指标
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
