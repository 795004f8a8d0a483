package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// LocationRepository expone la enumeración cerrada de destinos (solo lectura).
type LocationRepository interface {
	List(ctx context.Context) ([]entity.Location, error)
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	GetByName(ctx context.Context, name string) (*entity.Location, error)
}
