package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Wallet metrics
	DepositsInitiated    prometheus.Counter
	WithdrawalsInitiated prometheus.Counter
	TransactionsPosted   *prometheus.CounterVec
	TransactionsSettled  *prometheus.CounterVec
	ContentionRetries    prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter

	// Table metrics
	TablesCreated  prometheus.Counter
	TablesClosed   prometheus.Counter
	TableOccupancy *prometheus.GaugeVec

	// Session metrics
	SessionsJoined     prometheus.Counter
	SessionsClosed     *prometheus.CounterVec
	StackDeltasApplied prometheus.Counter

	// Reconciliation metrics
	ReconciliationRuns          prometheus.Counter
	ReconciliationDiscrepancies prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxBacklog   prometheus.Gauge

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Wallet metrics
		DepositsInitiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_deposits_initiated_total",
			Help: "Total number of deposits handed to the payment gateway",
		}),
		WithdrawalsInitiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_withdrawals_initiated_total",
			Help: "Total number of withdrawals handed to the payment gateway",
		}),
		TransactionsPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_transactions_posted_total",
				Help: "Total immediately completed transactions by kind",
			},
			[]string{"kind"},
		),
		TransactionsSettled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_transactions_settled_total",
				Help: "Total pending transactions settled by kind and final status",
			},
			[]string{"kind", "status"},
		),
		ContentionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_contention_retries_total",
			Help: "Total balance updates retried after a version conflict",
		}),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		// Table metrics
		TablesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_tables_created_total",
			Help: "Total number of tables created",
		}),
		TablesClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_tables_closed_total",
			Help: "Total number of tables closed",
		}),
		TableOccupancy: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cardroom_table_occupancy",
				Help: "Current seated players per table",
			},
			[]string{"table_id"},
		),

		// Session metrics
		SessionsJoined: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_sessions_joined_total",
			Help: "Total number of seat sessions opened",
		}),
		SessionsClosed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_sessions_closed_total",
				Help: "Total number of seat sessions closed by reason",
			},
			[]string{"reason"},
		),
		StackDeltasApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_stack_deltas_applied_total",
			Help: "Total stack adjustments applied to sessions",
		}),

		// Reconciliation metrics
		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_reconciliation_runs_total",
			Help: "Total reconciliation passes completed",
		}),
		ReconciliationDiscrepancies: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cardroom_reconciliation_discrepancies",
			Help: "Discrepancies found by the latest reconciliation pass",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardroom_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardroom_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cardroom_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_cache_hits_total",
				Help: "Total cache hits",
			},
			[]string{"cache"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_cache_misses_total",
				Help: "Total cache misses",
			},
			[]string{"cache"},
		),
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardroom_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cardroom_outbox_backlog",
			Help: "Unpublished outbox events at last publisher pass",
		}),

		// Authentication metrics
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardroom_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
