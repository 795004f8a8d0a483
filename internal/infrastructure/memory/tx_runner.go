package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una unidad de trabajo en memoria.
// Las escrituras quedan en un buffer y se aplican juntas en el commit; si fn falla no se aplica nada.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run inicia la unidad de trabajo, ejecuta fn con repos atados a ella y confirma o descarta.
// Los locks de lote adquiridos se liberan siempre al salir.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lots repository.LotRepository,
	movements repository.MovementRepository,
) error) error {
	tx := newMemTx(r.store)
	defer tx.release()

	if err := fn(&LotRepo{s: r.store, tx: tx}, &MovementRepo{s: r.store, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("commit: %w", domain.ErrLockTimeout)
		}
		return err
	}
	return tx.commit()
}

// memTx acumula los cambios de una unidad de trabajo.
type memTx struct {
	s         *Store
	held      map[string]bool
	heldOrder []string
	remaining map[string]int64 // lotID -> nuevo restante
	newLots   []*entity.Lot
	newMovs   []*entity.Movement
}

func newMemTx(s *Store) *memTx {
	return &memTx{
		s:         s,
		held:      make(map[string]bool),
		remaining: make(map[string]int64),
	}
}

func (tx *memTx) lock(ctx context.Context, id string) error {
	if tx.held[id] {
		return nil
	}
	if err := tx.s.acquireLot(ctx, id); err != nil {
		return err
	}
	tx.held[id] = true
	tx.heldOrder = append(tx.heldOrder, id)
	return nil
}

func (tx *memTx) release() {
	for i := len(tx.heldOrder) - 1; i >= 0; i-- {
		tx.s.releaseLot(tx.heldOrder[i])
	}
	tx.heldOrder = nil
	tx.held = map[string]bool{}
}

// view devuelve el lote tal como lo ve la transacción (confirmado + cambios pendientes). Requiere s.mu en lectura.
func (tx *memTx) view(id string) *entity.Lot {
	for _, l := range tx.newLots {
		if l.ID == id {
			c := cloneLot(l)
			if r, ok := tx.remaining[id]; ok {
				c.Remaining = r
			}
			return c
		}
	}
	l, ok := tx.s.lots[id]
	if !ok {
		return nil
	}
	c := cloneLot(l)
	if r, ok := tx.remaining[id]; ok {
		c.Remaining = r
	}
	return c
}

func (tx *memTx) commit() error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	// Las referencias se revisan bajo s.mu: un borrado del catálogo concurrente no puede dejar
	// lotes ni movimientos huérfanos.
	for _, nl := range tx.newLots {
		if p, ok := s.products[nl.ProductID]; !ok || p.IsDeleted() {
			return domain.NotFound("produto_id", nl.ProductID)
		}
		if nl.SupplierID != "" {
			if sp, ok := s.suppliers[nl.SupplierID]; !ok || sp.IsDeleted() {
				return domain.NotFound("fornecedor_id", nl.SupplierID)
			}
		}
	}
	for _, m := range tx.newMovs {
		if _, ok := s.products[m.ProductID]; !ok {
			return domain.NotFound("produto_id", m.ProductID)
		}
	}

	// Unicidad de código por producto: se revisa aquí porque dos recepciones concurrentes
	// no comparten lock de lote.
	for i, nl := range tx.newLots {
		conflict := s.hasLotCode(nl.ProductID, nl.Code)
		for _, other := range tx.newLots[:i] {
			if other.ProductID == nl.ProductID && entity.NameKey(other.Code) == entity.NameKey(nl.Code) {
				conflict = true
			}
		}
		if conflict {
			return domain.Conflict("lote", nl.Code, "código de lote já existe para o produto")
		}
	}

	for id, r := range tx.remaining {
		var received int64
		if l, ok := s.lots[id]; ok {
			received = l.Received
		} else if nl := tx.findNew(id); nl != nil {
			received = nl.Received
		} else {
			return fmt.Errorf("commit: lote %s inexistente", id)
		}
		if r < 0 || r > received {
			return fmt.Errorf("commit: restante fuera de rango en lote %s (%d)", id, r)
		}
	}

	for _, nl := range tx.newLots {
		s.lots[nl.ID] = cloneLot(nl)
		s.indexLot(nl)
	}
	for id, r := range tx.remaining {
		s.lots[id].Remaining = r
	}
	for _, m := range tx.newMovs {
		s.movements = append(s.movements, cloneMovement(m))
	}
	return nil
}

func (tx *memTx) findNew(id string) *entity.Lot {
	for _, l := range tx.newLots {
		if l.ID == id {
			return l
		}
	}
	return nil
}
