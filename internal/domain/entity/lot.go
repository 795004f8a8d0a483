package entity

import "time"

// Lot es un recibo de stock: unidad de asignación con cantidad restante y validez opcional.
// Invariante: 0 <= Remaining <= Received. Nunca se borra físicamente.
type Lot struct {
	ID            string
	ProductID     string
	SupplierID    string // vacío para stock importado/legado
	Code          string // único por producto (case-insensitive)
	Received      int64
	Remaining     int64
	ExpiresAt     *time.Time // fecha (00:00 UTC); nil = sin validez
	InvoiceNumber string
	ReceivedAt    time.Time
}

// Available indica si el lote todavía puede asignarse.
func (l *Lot) Available() bool { return l.Remaining > 0 }

// ExpiresBy indica si el lote vence en o antes de limit (incluye vencidos).
func (l *Lot) ExpiresBy(limit time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(limit)
}
