package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza que cada mutación de lote y su movimiento se confirmen juntos o no se confirmen.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lots repository.LotRepository,
		movements repository.MovementRepository,
	) error) error
}
