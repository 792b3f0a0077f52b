package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "importer"

// Metrics — метрики конвейера импорта.
type Metrics struct {
	imports    *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
	categories prometheus.Counter
	fetched    prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// reg == nil — метрики не регистрируются (удобно в тестах).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Завершённые импорты по итоговому статусу.",
		}, []string{"status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_failures_total",
			Help:      "Упавшие импорты по этапу конвейера.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Длительность импорта от скачивания до построения дерева.",
			Buckets:   prometheus.DefBuckets,
		}),
		categories: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "categories_parsed_total",
			Help:      "Число разобранных категорий.",
		}),
		fetched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetched_bytes",
			Help:      "Размер скачанных файлов.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.imports, m.failures, m.duration, m.categories, m.fetched)
	}

	return m
}

// ObserveSuccess учитывает успешный импорт.
func (m *Metrics) ObserveSuccess(categories int, d time.Duration) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues("SUCCEEDED").Inc()
	m.categories.Add(float64(categories))
	m.duration.Observe(d.Seconds())
}

// ObserveFailure учитывает упавший импорт.
func (m *Metrics) ObserveFailure(stage string, d time.Duration) {
	if m == nil {
		return
	}
	if stage == "" {
		stage = "unknown"
	}
	m.imports.WithLabelValues("FAILED").Inc()
	m.failures.WithLabelValues(stage).Inc()
	m.duration.Observe(d.Seconds())
}

// ObserveFetch учитывает размер скачанного файла.
func (m *Metrics) ObserveFetch(bytes int) {
	if m == nil {
		return
	}
	m.fetched.Observe(float64(bytes))
}
