package ports

import "time"

// Resultados de operación para las métricas.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // error de negocio (validación, stock insuficiente, conflicto)
	OutcomeError    = "error"
)

// LedgerMetrics define el puerto de instrumentación (Prometheus en infraestructura).
type LedgerMetrics interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	ObserveImport(dataType string, imported, failed int)
	ObserveDashboardCache(hit bool)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) ObserveOperation(string, string, time.Duration) {}
func (NopMetrics) ObserveImport(string, int, int)                 {}
func (NopMetrics) ObserveDashboardCache(bool)                     {}
