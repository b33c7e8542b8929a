package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы поиска для метки outcome
const (
	OutcomeFound       = "found"
	OutcomeUnreachable = "unreachable"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// Поиск
	SearchesTotal      *prometheus.CounterVec
	SearchDuration     *prometheus.HistogramVec
	TraceSteps         *prometheus.HistogramVec
	RelaxationsTotal   *prometheus.CounterVec
	OperationsInFlight prometheus.Gauge

	// Граф
	GraphVertices prometheus.Gauge
	GraphArcs     prometheus.Gauge
	DatasetLoads  *prometheus.CounterVec

	// Кэш
	CacheOperations *prometheus.CounterVec

	// Экспорт
	ExportsTotal   *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var (
	defaultMetrics *Metrics
	defaultMu      sync.Mutex
)

// InitMetrics инициализирует метрики и делает их глобальными
func InitMetrics(namespace, subsystem string) *Metrics {
	m := newMetrics(namespace, subsystem)

	defaultMu.Lock()
	defaultMetrics = m
	defaultMu.Unlock()
	return m
}

func newMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "searches_total",
				Help:      "Total number of shortest path searches",
			},
			[]string{"strategy", "outcome", "cache"},
		),

		SearchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "search_duration_seconds",
				Help:      "Duration of shortest path searches",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"strategy"},
		),

		TraceSteps: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "trace_steps",
				Help:      "Number of recorded steps per search",
				Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"strategy"},
		),

		RelaxationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "relaxations_total",
				Help:      "Relaxation attempts by result",
			},
			[]string{"result"},
		),

		OperationsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operations_in_flight",
				Help:      "Current number of searches and exports being processed",
			},
		),

		GraphVertices: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_vertices",
				Help:      "Number of vertices in the loaded graph",
			},
		),

		GraphArcs: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_arcs",
				Help:      "Number of arcs in the loaded graph",
			},
		),

		DatasetLoads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dataset_loads_total",
				Help:      "Dataset load attempts",
			},
			[]string{"status"},
		),

		CacheOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_operations_total",
				Help:      "Search cache operations",
			},
			[]string{"operation"},
		),

		ExportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exports_total",
				Help:      "Total number of result exports",
			},
			[]string{"format", "status"},
		),

		ExportDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "export_duration_seconds",
				Help:      "Duration of result exports",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"format"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}
}

// Get возвращает глобальные метрики, создавая их при первом обращении
func Get() *Metrics {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultMetrics == nil {
		defaultMetrics = newMetrics("routeviz", "")
	}
	return defaultMetrics
}

// RecordSearch записывает метрики поиска
func (m *Metrics) RecordSearch(strategy, outcome string, cached bool, duration time.Duration, steps int) {
	cache := "miss"
	if cached {
		cache = "hit"
	}

	m.SearchesTotal.WithLabelValues(strategy, outcome, cache).Inc()
	m.SearchDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if !cached {
		m.TraceSteps.WithLabelValues(strategy).Observe(float64(steps))
	}
}

// RecordRelaxations записывает количество улучшенных и неулучшенных релаксаций
func (m *Metrics) RecordRelaxations(improved, skipped int) {
	m.RelaxationsTotal.WithLabelValues("improved").Add(float64(improved))
	m.RelaxationsTotal.WithLabelValues("not_improved").Add(float64(skipped))
}

// RecordGraphSize записывает размер графа
func (m *Metrics) RecordGraphSize(vertices, arcs int) {
	m.GraphVertices.Set(float64(vertices))
	m.GraphArcs.Set(float64(arcs))
}

// RecordDatasetLoad записывает результат загрузки датасета
func (m *Metrics) RecordDatasetLoad(success bool) {
	m.DatasetLoads.WithLabelValues(statusLabel(success)).Inc()
}

// RecordCacheOperation записывает операцию кэша (hit, miss, set, error)
func (m *Metrics) RecordCacheOperation(operation string) {
	m.CacheOperations.WithLabelValues(operation).Inc()
}

// RecordExport записывает результат экспорта
func (m *Metrics) RecordExport(format string, success bool) {
	m.ExportsTotal.WithLabelValues(format, statusLabel(success)).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewMetricsServer создаёт HTTP сервер для метрик
func NewMetricsServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	return NewMetricsServer(port, "/metrics").ListenAndServe()
}
