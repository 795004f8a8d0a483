package entity

import "time"

// Tipos de movimiento.
const (
	MovementKindEntry = "entry" // entrada: crea un lote
	MovementKindExit  = "exit"  // saída: descuenta de un lote
)

// Movement es un evento inmutable del historial. Las correcciones se hacen con un movimiento compensatorio.
// TransactionID agrupa los movimientos generados por una misma operación (p.ej. salida automática en varios lotes).
type Movement struct {
	ID            string
	TransactionID string
	Kind          string
	ProductID     string
	LotID         string
	Quantity      int64 // siempre > 0; el signo lo da Kind
	OccurredAt    time.Time

	// entrada
	SupplierID    string
	InvoiceNumber string

	// saída
	LocationID string
	Requester  string
	Notes      string
}
