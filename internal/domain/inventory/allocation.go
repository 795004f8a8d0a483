package inventory

import (
	"sort"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// Allocation es una porción de una salida asignada a un lote concreto.
type Allocation struct {
	Lot      *entity.Lot
	Quantity int64
}

// AllocationLess implementa el orden canónico (servicio de dominio):
// validade ascendente (sin validade al final), luego fecha de recepción, luego ID.
func AllocationLess(a, b *entity.Lot) bool {
	switch {
	case a.ExpiresAt != nil && b.ExpiresAt == nil:
		return true
	case a.ExpiresAt == nil && b.ExpiresAt != nil:
		return false
	case a.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
		return a.ExpiresAt.Before(*b.ExpiresAt)
	}
	if !a.ReceivedAt.Equal(b.ReceivedAt) {
		return a.ReceivedAt.Before(b.ReceivedAt)
	}
	return a.ID < b.ID
}

// SortForAllocation ordena in-place según AllocationLess. Es determinista: el ID desempata.
func SortForAllocation(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool { return AllocationLess(lots[i], lots[j]) })
}

// SortByID ordena por ID ascendente: orden fijo de adquisición de locks.
func SortByID(lots []*entity.Lot) {
	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
}

// PlanAllocation reparte quantity entre los lotes disponibles en orden canónico (earliest-expiry-first).
// Todo o nada: si la suma restante no alcanza devuelve InsufficientStockError y ningún plan.
// No modifica los lotes; el llamador aplica el plan dentro de su unidad de trabajo.
func PlanAllocation(lots []*entity.Lot, quantity int64) ([]Allocation, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("quantidade", "", "deve ser maior que zero")
	}

	candidates := make([]*entity.Lot, 0, len(lots))
	var total int64
	for _, l := range lots {
		if l.Available() {
			candidates = append(candidates, l)
			total += l.Remaining
		}
	}
	if total < quantity {
		return nil, &domain.InsufficientStockError{Subject: "produto", Available: total, Requested: quantity}
	}
	SortForAllocation(candidates)

	plan := make([]Allocation, 0, 2)
	pending := quantity
	for _, l := range candidates {
		if pending == 0 {
			break
		}
		take := min(l.Remaining, pending)
		plan = append(plan, Allocation{Lot: l, Quantity: take})
		pending -= take
	}
	return plan, nil
}
