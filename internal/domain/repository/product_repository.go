package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetBy* devuelven (nil, nil) cuando no existe. Los nombres son únicos sin distinguir
// mayúsculas entre productos no borrados; Create/Update devuelven domain.ErrConflict si chocan.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, includeDeleted bool) ([]*entity.Product, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
