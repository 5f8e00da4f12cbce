// Package metrics provides Prometheus metrics for the ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the ranking service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ranking
	rankRequests         *prometheus.CounterVec
	rankingLatency       *prometheus.HistogramVec
	candidatesScored     prometheus.Counter
	mergeSources         prometheus.Histogram
	weightFallbacks      *prometheus.CounterVec
	personalizedRequests prometheus.Counter

	// Response cache
	cacheLookups *prometheus.CounterVec
	cacheErrors  prometheus.Counter

	// Recipe store
	storeQueryLatency prometheus.Histogram
	storeHydrated     prometheus.Counter
	storeMissing      prometheus.Counter

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerChunksProcessed   prometheus.Counter
	workerInlineChunks      prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "reciperank",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	latencyMs := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000}

	m.rankRequests = auto.NewCounterVec(m.counterOpts("requests_total", "Ranking requests by endpoint and mode"),
		[]string{"endpoint", "mode"})
	m.rankingLatency = auto.NewHistogramVec(m.histogramOpts("latency_milliseconds",
		"Time spent scoring and sorting one request in milliseconds", latencyMs), []string{"endpoint"})
	m.candidatesScored = auto.NewCounter(m.counterOpts("candidates_scored_total", "Total number of candidates scored"))
	m.mergeSources = auto.NewHistogram(m.histogramOpts("merge_sources",
		"Number of result sets fused per merge request", []float64{1, 2, 3, 4, 6, 8}))
	m.weightFallbacks = auto.NewCounterVec(m.counterOpts("weight_fallbacks_total",
		"Requests whose weights were degenerate and fell back to equal weighting"), []string{"kind"})
	m.personalizedRequests = auto.NewCounter(m.counterOpts("personalized_requests_total",
		"Ranking requests carrying user preferences"))

	m.cacheLookups = auto.NewCounterVec(m.counterOpts("cache_lookups_total", "Response cache lookups by result"),
		[]string{"result"})
	m.cacheErrors = auto.NewCounter(m.counterOpts("cache_errors_total", "Response cache backend errors"))

	m.storeQueryLatency = auto.NewHistogram(m.histogramOpts("store_query_latency_milliseconds",
		"Recipe store hydration query latency in milliseconds", nil))
	m.storeHydrated = auto.NewCounter(m.counterOpts("store_hydrated_total", "Candidates hydrated from the recipe store"))
	m.storeMissing = auto.NewCounter(m.counterOpts("store_missing_total", "Search hits with no matching recipe"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of pending scoring chunks"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of chunks enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of chunks dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Chunks rejected by a full or closed queue"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogramOpts("queue_processing_latency_milliseconds",
		"Time from enqueue to dequeue in milliseconds", latencyMs))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of scoring workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of running workers"))
	m.workerIdleCount = auto.NewGauge(m.gaugeOpts("worker_idle_count", "Number of stopped workers"))
	m.workerChunksProcessed = auto.NewCounter(m.counterOpts("worker_chunks_total", "Scoring chunks processed by workers"))
	m.workerInlineChunks = auto.NewCounter(m.counterOpts("worker_inline_chunks_total",
		"Scoring chunks run on the request goroutine"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds",
		"Worker chunk processing latency in milliseconds", latencyMs))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", nil), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Ranking.

// RecordRankRequest counts a ranking request.
func (m *Manager) RecordRankRequest(endpoint, mode string) {
	m.rankRequests.WithLabelValues(endpoint, mode).Inc()
}

// RecordRankingLatency records scoring plus sorting time for one request.
func (m *Manager) RecordRankingLatency(endpoint string, latencyMs float64) {
	m.rankingLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordCandidatesScored adds n scored candidates.
func (m *Manager) RecordCandidatesScored(n int) {
	m.candidatesScored.Add(float64(n))
}

// RecordMergeSources records how many result sets one merge fused.
func (m *Manager) RecordMergeSources(n int) {
	m.mergeSources.Observe(float64(n))
}

// RecordWeightFallback counts a degenerate weight configuration of the given kind.
func (m *Manager) RecordWeightFallback(kind string) {
	m.weightFallbacks.WithLabelValues(kind).Inc()
}

// RecordPersonalizedRequest counts a request carrying preferences.
func (m *Manager) RecordPersonalizedRequest() {
	m.personalizedRequests.Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Manager) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheError counts a cache backend failure.
func (m *Manager) RecordCacheError() {
	m.cacheErrors.Inc()
}

// RecordStoreQuery records one hydration query and its outcome.
func (m *Manager) RecordStoreQuery(latencyMs float64, hydrated, missing int) {
	m.storeQueryLatency.Observe(latencyMs)
	m.storeHydrated.Add(float64(hydrated))
	m.storeMissing.Add(float64(missing))
}

// Ranking Metrics Functions.

// RecordRankRequest counts a ranking request on the global manager.
func RecordRankRequest(endpoint, mode string) {
	globalManager.RecordRankRequest(endpoint, mode)
}

// RecordRankingLatency records ranking latency on the global manager.
func RecordRankingLatency(endpoint string, latencyMs float64) {
	globalManager.RecordRankingLatency(endpoint, latencyMs)
}

// RecordCandidatesScored adds scored candidates on the global manager.
func RecordCandidatesScored(n int) {
	globalManager.RecordCandidatesScored(n)
}

// RecordMergeSources records merge fan-in on the global manager.
func RecordMergeSources(n int) {
	globalManager.RecordMergeSources(n)
}

// RecordWeightFallback counts a weight fallback on the global manager.
func RecordWeightFallback(kind string) {
	globalManager.RecordWeightFallback(kind)
}

// RecordPersonalizedRequest counts a personalized request on the global manager.
func RecordPersonalizedRequest() {
	globalManager.RecordPersonalizedRequest()
}

// RecordCacheLookup counts a cache lookup on the global manager.
func RecordCacheLookup(hit bool) {
	globalManager.RecordCacheLookup(hit)
}

// RecordCacheError counts a cache failure on the global manager.
func RecordCacheError() {
	globalManager.RecordCacheError()
}

// RecordStoreQuery records a hydration query on the global manager.
func RecordStoreQuery(latencyMs float64, hydrated, missing int) {
	globalManager.RecordStoreQuery(latencyMs, hydrated, missing)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerChunk records a chunk processed by a worker.
func RecordWorkerChunk(latencyMs float64) {
	globalManager.workerChunksProcessed.Inc()
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordInlineChunk counts a chunk that ran on the caller goroutine.
func RecordInlineChunk() {
	globalManager.workerInlineChunks.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
