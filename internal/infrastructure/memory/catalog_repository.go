package memory

import (
	"context"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
)

// ProductRepo catálogo de productos en memoria.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el repositorio.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// nameTaken requiere s.mu tomado.
func (r *ProductRepo) nameTaken(name, exceptID string) bool {
	key := entity.NameKey(name)
	for _, p := range r.s.products {
		if p.ID != exceptID && !p.IsDeleted() && entity.NameKey(p.Name) == key {
			return true
		}
	}
	return false
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(p.Name, p.ID) {
		return domain.Conflict("nome", p.Name, "já existe um produto com este nome")
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

// GetByName busca por nombre sin distinguir mayúsculas entre productos activos.
func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	key := entity.NameKey(name)
	for _, p := range r.s.products {
		if !p.IsDeleted() && entity.NameKey(p.Name) == key {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.NotFound("produto_id", p.ID)
	}
	if r.nameTaken(p.Name, p.ID) {
		return domain.Conflict("nome", p.Name, "já existe um produto com este nome")
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) List(_ context.Context, includeDeleted bool) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if includeDeleted || !p.IsDeleted() {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *ProductRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return domain.NotFound("produto_id", id)
	}
	p.DeletedAt = &at
	p.UpdatedAt = at
	return nil
}

// Delete borra el producto; con lotes o movimientos devuelve Conflict, igual que la FK en PostgreSQL.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.referencedProduct(id) {
		return domain.Conflict("produto_id", id, "registro relacionado não existe ou está em uso")
	}
	delete(r.s.products, id)
	return nil
}

// SupplierRepo catálogo de proveedores en memoria.
type SupplierRepo struct {
	s *Store
}

// NewSupplierRepository construye el repositorio.
func NewSupplierRepository(s *Store) *SupplierRepo {
	return &SupplierRepo{s: s}
}

func (r *SupplierRepo) nameTaken(name, exceptID string) bool {
	key := entity.NameKey(name)
	for _, sp := range r.s.suppliers {
		if sp.ID != exceptID && !sp.IsDeleted() && entity.NameKey(sp.Name) == key {
			return true
		}
	}
	return false
}

func (r *SupplierRepo) Create(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(sp.Name, sp.ID) {
		return domain.Conflict("nome", sp.Name, "já existe um fornecedor com este nome")
	}
	r.s.suppliers[sp.ID] = cloneSupplier(sp)
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sp, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	return cloneSupplier(sp), nil
}

func (r *SupplierRepo) GetByName(_ context.Context, name string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	key := entity.NameKey(name)
	for _, sp := range r.s.suppliers {
		if !sp.IsDeleted() && entity.NameKey(sp.Name) == key {
			return cloneSupplier(sp), nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) Update(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sp.ID]; !ok {
		return domain.NotFound("fornecedor_id", sp.ID)
	}
	if r.nameTaken(sp.Name, sp.ID) {
		return domain.Conflict("nome", sp.Name, "já existe um fornecedor com este nome")
	}
	r.s.suppliers[sp.ID] = cloneSupplier(sp)
	return nil
}

func (r *SupplierRepo) List(_ context.Context, includeDeleted bool) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Supplier, 0, len(r.s.suppliers))
	for _, sp := range r.s.suppliers {
		if includeDeleted || !sp.IsDeleted() {
			out = append(out, cloneSupplier(sp))
		}
	}
	return out, nil
}

func (r *SupplierRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.suppliers[id]
	if !ok {
		return domain.NotFound("fornecedor_id", id)
	}
	sp.DeletedAt = &at
	sp.UpdatedAt = at
	return nil
}

// Delete borra el proveedor; si algún lote lo referencia devuelve Conflict.
func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.referencedSupplier(id) {
		return domain.Conflict("fornecedor_id", id, "registro relacionado não existe ou está em uso")
	}
	delete(r.s.suppliers, id)
	return nil
}

// LocationRepo destinos sembrados al iniciar (solo lectura).
type LocationRepo struct {
	s *Store
}

// NewLocationRepository construye el repositorio.
func NewLocationRepository(s *Store) *LocationRepo {
	return &LocationRepo{s: s}
}

func (r *LocationRepo) List(_ context.Context) ([]entity.Location, error) {
	return append([]entity.Location(nil), r.s.locations...), nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	for _, l := range r.s.locations {
		if l.ID == id {
			loc := l
			return &loc, nil
		}
	}
	return nil, nil
}

func (r *LocationRepo) GetByName(_ context.Context, name string) (*entity.Location, error) {
	key := entity.NameKey(name)
	for _, l := range r.s.locations {
		if entity.NameKey(l.Name) == key {
			loc := l
			return &loc, nil
		}
	}
	return nil, nil
}
