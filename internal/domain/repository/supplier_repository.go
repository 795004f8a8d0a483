package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	GetByName(ctx context.Context, name string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	List(ctx context.Context, includeDeleted bool) ([]*entity.Supplier, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
