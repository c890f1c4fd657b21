package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// Source site fetch metrics
	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasy_source_fetches_total",
			Help: "Total number of page fetches against the source site",
		},
		[]string{"page", "status"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fantasy_source_fetch_duration_seconds",
			Help:    "Duration of source page fetches and renders in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"page"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasy_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fantasy_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasy_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasy_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fantasy_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fantasy_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Ingestion run metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasy_sync_operations_total",
			Help: "Total number of ingestion runs and phases",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fantasy_sync_duration_seconds",
			Help:    "Duration of ingestion runs and phases in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"type"},
	)

	BioFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fantasy_bio_failures_total",
			Help: "Players dropped from enrichment because their detail page failed",
		},
	)

	PlayersPublished = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasy_players_published",
			Help: "Players in the most recently published run",
		},
	)

	RankingsPublished = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasy_rankings_published",
			Help: "Ranking rows in the most recently published run",
		},
	)

	StatsPublished = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasy_stats_published",
			Help: "Stat lines in the most recently published run",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fantasy_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasy_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fantasy_last_successful_sync_timestamp",
			Help: "Timestamp of last successful ingestion run",
		},
	)
)

// RecordSourceFetch records a source page fetch
func RecordSourceFetch(page, status string, duration float64) {
	SourceFetchesTotal.WithLabelValues(page, status).Inc()
	SourceFetchDuration.WithLabelValues(page).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordSync records an ingestion run or one of its phases
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if syncType == "ingestion" && status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordBioFailure records a player dropped from enrichment
func RecordBioFailure() {
	BioFailuresTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdatePublishedStats sets the row counts of the latest published run
func UpdatePublishedStats(players, rankings, stats int) {
	PlayersPublished.Set(float64(players))
	RankingsPublished.Set(float64(rankings))
	StatsPublished.Set(float64(stats))
}
