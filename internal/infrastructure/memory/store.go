package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// Store es el almacenamiento en proceso. Un RWMutex protege los mapas (lecturas concurrentes sin
// bloquear el libro entero) y cada lote tiene su propio semáforo de peso 1 que hace de
// SELECT ... FOR UPDATE: se adquiere con el contexto, así que nunca espera indefinidamente.
type Store struct {
	mu        sync.RWMutex
	products  map[string]*entity.Product
	suppliers map[string]*entity.Supplier
	locations []entity.Location
	lots      map[string]*entity.Lot
	lotCodes  map[string]map[string]struct{} // productID -> NameKey(código)
	movements []*entity.Movement

	locksMu  sync.Mutex
	lotLocks map[string]*semaphore.Weighted
}

// NewStore crea un Store vacío con los destinos sembrados.
func NewStore(locations []entity.Location) *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		suppliers: make(map[string]*entity.Supplier),
		locations: append([]entity.Location(nil), locations...),
		lots:      make(map[string]*entity.Lot),
		lotCodes:  make(map[string]map[string]struct{}),
		lotLocks:  make(map[string]*semaphore.Weighted),
	}
}

// hasLotCode indica si el producto ya tiene un lote con ese código. Requiere s.mu.
func (s *Store) hasLotCode(productID, code string) bool {
	_, ok := s.lotCodes[productID][entity.NameKey(code)]
	return ok
}

// indexLot registra el código del lote en el índice por producto. Requiere s.mu en escritura.
func (s *Store) indexLot(l *entity.Lot) {
	codes, ok := s.lotCodes[l.ProductID]
	if !ok {
		codes = make(map[string]struct{})
		s.lotCodes[l.ProductID] = codes
	}
	codes[entity.NameKey(l.Code)] = struct{}{}
}

// referencedProduct indica si algún lote o movimiento apunta al producto. Requiere s.mu.
func (s *Store) referencedProduct(id string) bool {
	if len(s.lotCodes[id]) > 0 {
		return true
	}
	for _, m := range s.movements {
		if m.ProductID == id {
			return true
		}
	}
	return false
}

// referencedSupplier indica si algún lote o movimiento apunta al proveedor. Requiere s.mu.
func (s *Store) referencedSupplier(id string) bool {
	for _, l := range s.lots {
		if l.SupplierID == id {
			return true
		}
	}
	for _, m := range s.movements {
		if m.SupplierID == id {
			return true
		}
	}
	return false
}

func (s *Store) lotLock(id string) *semaphore.Weighted {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.lotLocks[id]
	if !ok {
		l = semaphore.NewWeighted(1)
		s.lotLocks[id] = l
	}
	return l
}

// acquireLot bloquea el lote o devuelve ErrLockTimeout si el contexto vence antes.
func (s *Store) acquireLot(ctx context.Context, id string) error {
	if err := s.lotLock(id).Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("lote %s: %w", id, domain.ErrLockTimeout)
		}
		return err
	}
	return nil
}

func (s *Store) releaseLot(id string) {
	s.lotLock(id).Release(1)
}

func cloneLot(l *entity.Lot) *entity.Lot {
	c := *l
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	if p.UnitPrice != nil {
		v := *p.UnitPrice
		c.UnitPrice = &v
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneSupplier(s *entity.Supplier) *entity.Supplier {
	c := *s
	if s.DeletedAt != nil {
		t := *s.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	c := *m
	return &c
}
