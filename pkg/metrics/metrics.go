package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	HTTPRequestSize   *prometheus.HistogramVec
	HTTPResponseSize  *prometheus.HistogramVec

	// Outreach Metrics
	RunsStartedTotal     *prometheus.CounterVec
	RunsStoppedTotal     *prometheus.CounterVec
	StepSendsTotal       *prometheus.CounterVec
	SweepsTotal          *prometheus.CounterVec
	SweepDuration        prometheus.Histogram
	SweepDueRuns         prometheus.Histogram
	IdleCustomersFlagged prometheus.Counter

	// Database Metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsFailed *prometheus.CounterVec
	DBQueryDuration     *prometheus.HistogramVec
	DBQueryErrors       *prometheus.CounterVec

	// Redis Metrics
	RedisConnectionsActive prometheus.Gauge
	RedisConnectionsFailed *prometheus.CounterVec
	RedisOperationDuration *prometheus.HistogramVec
	RedisOperationErrors   *prometheus.CounterVec

	// Worker Metrics
	WorkerJobsProcessed *prometheus.CounterVec
	WorkerJobDuration   *prometheus.HistogramVec
	WorkerErrors        *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	m := &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path", "status"},
		),

		// Outreach Metrics
		RunsStartedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_runs_started_total",
				Help: "Total number of workflow runs started",
			},
			[]string{"workflow_id"},
		),
		RunsStoppedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_runs_stopped_total",
				Help: "Total number of workflow runs stopped before completion",
			},
			[]string{"status"},
		),
		StepSendsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_step_sends_total",
				Help: "Total number of step send attempts",
			},
			[]string{"channel", "status"},
		),
		SweepsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_sweeps_total",
				Help: "Total number of dispatcher sweeps",
			},
			[]string{"status"},
		),
		SweepDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "outreach_sweep_duration_seconds",
				Help:    "Dispatcher sweep duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
		),
		SweepDueRuns: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "outreach_sweep_due_runs",
				Help:    "Number of due runs picked up per sweep",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
			},
		),
		IdleCustomersFlagged: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "outreach_idle_customers_flagged_total",
				Help: "Total number of customers flagged no-response by the idle sweeper",
			},
		),

		// Database Metrics
		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_connections_failed_total",
				Help: "Total number of failed database connection attempts",
			},
			[]string{"database"},
		),
		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
			},
			[]string{"query_type", "table"},
		),
		DBQueryErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"query_type", "error_type"},
		),

		// Redis Metrics
		RedisConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "redis_connections_active",
				Help: "Number of active Redis connections",
			},
		),
		RedisConnectionsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redis_connections_failed_total",
				Help: "Total number of failed Redis connection attempts",
			},
			[]string{"operation"},
		),
		RedisOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "redis_operations_duration_seconds",
				Help:    "Redis operation duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
			},
			[]string{"operation"},
		),
		RedisOperationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redis_operations_errors_total",
				Help: "Total number of Redis operation errors",
			},
			[]string{"operation"},
		),

		// Worker Metrics
		WorkerJobsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_jobs_processed_total",
				Help: "Total number of jobs processed by workers",
			},
			[]string{"worker_type", "status"},
		),
		WorkerJobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "worker_job_duration_seconds",
				Help:    "Worker job processing duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~102s
			},
			[]string{"worker_type"},
		),
		WorkerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_errors_total",
				Help: "Total number of worker errors",
			},
			[]string{"worker_type"},
		),
	}

	return m
}
