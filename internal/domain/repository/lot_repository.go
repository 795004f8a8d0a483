package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia de lotes.
// Los métodos *ForUpdate solo tienen sentido dentro de TxRunner.Run: bloquean el lote
// hasta el fin de la unidad de trabajo. ListAvailableForUpdate bloquea en orden ascendente de ID.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	ListAvailableForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error)
	UpdateRemaining(ctx context.Context, id string, remaining int64) error
	ListByProduct(ctx context.Context, productID string, onlyAvailable bool) ([]*entity.Lot, error)
	ListAvailable(ctx context.Context) ([]*entity.Lot, error)
	SumRemaining(ctx context.Context, productID string) (int64, error)
	ExistsBySupplier(ctx context.Context, supplierID string) (bool, error)
}
