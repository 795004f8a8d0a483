package usecase

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// LocationUseCase consulta de destinos (enumeración cerrada).
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// List devuelve los destinos en el orden sembrado.
func (uc *LocationUseCase) List(ctx context.Context) ([]dto.LocationResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.LocationResponse{ID: l.ID, Nome: l.Name})
	}
	return out, nil
}

// GetByID obtiene un destino por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	l, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.NotFound("local_destino_id", id)
	}
	return &dto.LocationResponse{ID: l.ID, Nome: l.Name}, nil
}

// Resolve acepta el ID o el nombre del destino (la importación de saídas trae el nombre).
func (uc *LocationUseCase) Resolve(ctx context.Context, idOrName string) (*dto.LocationResponse, error) {
	if l, err := uc.repo.GetByID(ctx, idOrName); err != nil || l != nil {
		if err != nil {
			return nil, err
		}
		return &dto.LocationResponse{ID: l.ID, Nome: l.Name}, nil
	}
	l, err := uc.repo.GetByName(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.NotFound("local", idOrName)
	}
	return &dto.LocationResponse{ID: l.ID, Nome: l.Name}, nil
}
