package entity

import "time"

// Tipos de evento publicados tras cada mutación confirmada.
const (
	EventCatalogChanged = "catalog.changed"
	EventStockReceived  = "stock.received"
	EventStockIssued    = "stock.issued"
)

// Event notifica a suscriptores (caché de métricas, websocket) que el estado cambió.
type Event struct {
	Type     string
	Entity   string // produto, fornecedor, lote
	EntityID string
	At       time.Time
}
