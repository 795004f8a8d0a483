package repository

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// MovementFilter filtros del historial. ProductIDs nil = todos; vacío (no nil) = ninguno.
// From es inclusivo y To exclusivo. Limit 0 = sin límite.
type MovementFilter struct {
	Kind              string
	From              *time.Time
	To                *time.Time
	ProductIDs        []string
	RequesterContains string
	Limit             int
	Offset            int
}

// MovementRepository define el puerto del historial inmutable (solo append).
// Query devuelve del más reciente al más antiguo.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	Query(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	CountByKind(ctx context.Context, kind string, from, to time.Time) (int, error)
	ExistsForProduct(ctx context.Context, productID string) (bool, error)
}
