package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/estoque-api/internal/application/ports"
)

var _ ports.LedgerMetrics = (*Prometheus)(nil)

// Prometheus implementa ports.LedgerMetrics con collectors registrados en un registry propio
// (los tests crean el suyo y no chocan con el registry global).
type Prometheus struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	importRows  *prometheus.CounterVec
	cacheLookup *prometheus.CounterVec
}

// NewPrometheus crea y registra los collectors del servicio.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estoque",
			Name:      "ledger_operations_total",
			Help:      "Operaciones del libro de lotes por resultado.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "estoque",
			Name:      "ledger_operation_seconds",
			Help:      "Duración de las operaciones del libro de lotes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estoque",
			Name:      "import_rows_total",
			Help:      "Filas procesadas por la importación.",
		}, []string{"tipo_dados", "result"}),
		cacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estoque",
			Name:      "dashboard_cache_lookups_total",
			Help:      "Consultas a la caché de métricas del dashboard.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		p.operations, p.latency, p.importRows, p.cacheLookup,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	p.operations.WithLabelValues(operation, outcome).Inc()
	p.latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (p *Prometheus) ObserveImport(dataType string, imported, failed int) {
	p.importRows.WithLabelValues(dataType, "imported").Add(float64(imported))
	p.importRows.WithLabelValues(dataType, "failed").Add(float64(failed))
}

func (p *Prometheus) ObserveDashboardCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookup.WithLabelValues(result).Inc()
}

// Handler expone el registry en formato de texto de Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry devuelve el registry subyacente.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
