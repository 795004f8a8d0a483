package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación en memoria de LotRepository. Con tx != nil ve los cambios pendientes
// de la unidad de trabajo; sin tx cada escritura se confirma sola.
type LotRepo struct {
	s  *Store
	tx *memTx
}

// NewLotRepository construye el repositorio fuera de transacción.
func NewLotRepository(s *Store) *LotRepo {
	return &LotRepo{s: s}
}

func (r *LotRepo) autocommit(fn func(tx *memTx) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	tx := newMemTx(r.s)
	defer tx.release()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// Create registra un lote nuevo. La unicidad del código se verifica al confirmar.
func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	return r.autocommit(func(tx *memTx) error {
		tx.newLots = append(tx.newLots, cloneLot(lot))
		return nil
	})
}

// GetByID obtiene un lote sin bloquearlo.
func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.tx != nil {
		return r.tx.view(id), nil
	}
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	return cloneLot(l), nil
}

// GetForUpdate bloquea el lote hasta el fin de la unidad de trabajo y devuelve su estado actual.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	if r.tx == nil {
		return r.GetByID(ctx, id)
	}
	r.s.mu.RLock()
	exists := r.tx.view(id) != nil
	r.s.mu.RUnlock()
	if !exists {
		return nil, nil
	}
	if err := r.tx.lock(ctx, id); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.tx.view(id), nil
}

// ListAvailableForUpdate bloquea en orden ascendente de ID todos los lotes con saldo del producto.
func (r *LotRepo) ListAvailableForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	if r.tx == nil {
		return r.ListByProduct(ctx, productID, true)
	}
	r.s.mu.RLock()
	var ids []string
	for _, l := range r.s.lots {
		if l.ProductID == productID {
			if v := r.tx.view(l.ID); v.Available() {
				ids = append(ids, l.ID)
			}
		}
	}
	for _, l := range r.tx.newLots {
		if l.ProductID == productID {
			ids = append(ids, l.ID)
		}
	}
	r.s.mu.RUnlock()

	sort.Strings(ids)
	for _, id := range ids {
		if err := r.tx.lock(ctx, id); err != nil {
			return nil, err
		}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Lot, 0, len(ids))
	for _, id := range ids {
		if v := r.tx.view(id); v != nil && v.Available() {
			out = append(out, v)
		}
	}
	return out, nil
}

// UpdateRemaining fija el restante del lote. Dentro de una unidad de trabajo el lote debe estar bloqueado.
func (r *LotRepo) UpdateRemaining(ctx context.Context, id string, remaining int64) error {
	return r.autocommit(func(tx *memTx) error {
		if err := tx.lock(ctx, id); err != nil {
			return err
		}
		r.s.mu.RLock()
		v := tx.view(id)
		r.s.mu.RUnlock()
		if v == nil {
			return domain.NotFound("lote_id", id)
		}
		tx.remaining[id] = remaining
		return nil
	})
}

// ListByProduct lista los lotes del producto (opcionalmente solo con saldo), ordenados por ID.
func (r *LotRepo) ListByProduct(_ context.Context, productID string, onlyAvailable bool) ([]*entity.Lot, error) {
	return r.list(func(l *entity.Lot) bool {
		return l.ProductID == productID && (!onlyAvailable || l.Available())
	}), nil
}

// ListAvailable lista todos los lotes con saldo, de todos los productos.
func (r *LotRepo) ListAvailable(_ context.Context) ([]*entity.Lot, error) {
	return r.list(func(l *entity.Lot) bool { return l.Available() }), nil
}

// SumRemaining suma el restante de todos los lotes del producto.
func (r *LotRepo) SumRemaining(_ context.Context, productID string) (int64, error) {
	var sum int64
	for _, l := range r.list(func(l *entity.Lot) bool { return l.ProductID == productID }) {
		sum += l.Remaining
	}
	return sum, nil
}

// ExistsBySupplier indica si algún lote fue recibido del proveedor.
func (r *LotRepo) ExistsBySupplier(_ context.Context, supplierID string) (bool, error) {
	return len(r.list(func(l *entity.Lot) bool { return l.SupplierID == supplierID })) > 0, nil
}

func (r *LotRepo) list(keep func(*entity.Lot) bool) []*entity.Lot {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.Lot
	for id, l := range r.s.lots {
		v := cloneLot(l)
		if r.tx != nil {
			v = r.tx.view(id)
		}
		if keep(v) {
			out = append(out, v)
		}
	}
	if r.tx != nil {
		for _, l := range r.tx.newLots {
			if v := r.tx.view(l.ID); keep(v) {
				out = append(out, v)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
