package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo historial en memoria (solo append). Las consultas ven únicamente lo confirmado.
type MovementRepo struct {
	s  *Store
	tx *memTx
}

// NewMovementRepository construye el repositorio fuera de transacción.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

// Create agrega el movimiento a la unidad de trabajo (o lo confirma directamente sin tx).
func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	if r.tx != nil {
		r.tx.newMovs = append(r.tx.newMovs, cloneMovement(m))
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[m.ProductID]; !ok {
		return domain.NotFound("produto_id", m.ProductID)
	}
	r.s.movements = append(r.s.movements, cloneMovement(m))
	return nil
}

// Query filtra el historial, del más reciente al más antiguo. A igual fecha gana el último insertado.
func (r *MovementRepo) Query(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var productSet map[string]bool
	if f.ProductIDs != nil {
		productSet = make(map[string]bool, len(f.ProductIDs))
		for _, id := range f.ProductIDs {
			productSet[id] = true
		}
	}
	requester := entity.NameKey(f.RequesterContains)

	type indexed struct {
		m   *entity.Movement
		seq int
	}
	var matched []indexed
	for i, m := range r.s.movements {
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.From != nil && m.OccurredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.OccurredAt.Before(*f.To) {
			continue
		}
		if productSet != nil && !productSet[m.ProductID] {
			continue
		}
		if requester != "" && !strings.Contains(entity.NameKey(m.Requester), requester) {
			continue
		}
		matched = append(matched, indexed{m: m, seq: i})
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.m.OccurredAt.Equal(b.m.OccurredAt) {
			return a.m.OccurredAt.After(b.m.OccurredAt)
		}
		return a.seq > b.seq
	})

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	out := make([]*entity.Movement, 0, len(matched))
	for _, im := range matched {
		out = append(out, cloneMovement(im.m))
	}
	return out, nil
}

// CountByKind cuenta operaciones (transaction_id distintos) del tipo en [from, to).
func (r *MovementRepo) CountByKind(_ context.Context, kind string, from, to time.Time) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, m := range r.s.movements {
		if m.Kind == kind && !m.OccurredAt.Before(from) && m.OccurredAt.Before(to) {
			seen[m.TransactionID] = struct{}{}
		}
	}
	return len(seen), nil
}

// ExistsForProduct indica si el producto tiene historial.
func (r *MovementRepo) ExistsForProduct(_ context.Context, productID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}
