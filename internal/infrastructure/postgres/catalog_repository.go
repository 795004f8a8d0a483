package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
)

// ── Productos ─────────────────────────────────────────────────────────────────

const productColumns = `id, name, category, minimum_stock, description, unit_price, deleted_at, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Nombre repetido entre activos → Conflict.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Category, p.MinimumStock, p.Description, p.UnitPrice, p.DeletedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("nome", p.Name, "já existe um produto com este nome")
		}
		return mapError("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID (incluye dados de baja).
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByName busca entre productos activos sin distinguir mayúsculas.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE lower(name) = lower($1) AND deleted_at IS NULL`, name)
}

// Update actualiza los campos editables del producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, category = $3, minimum_stock = $4, description = $5, unit_price = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Name, p.Category, p.MinimumStock, p.Description, p.UnitPrice, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("nome", p.Name, "já existe um produto com este nome")
		}
		return mapError("update product", err)
	}
	return nil
}

// List devuelve los productos; el orden por nombre lo aplica el caso de uso (collation pt-BR).
func (r *ProductRepo) List(ctx context.Context, includeDeleted bool) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE $1 OR deleted_at IS NULL ORDER BY name`, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SoftDelete marca el producto como dado de baja.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET deleted_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	return nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.MinimumStock, &p.Description, &p.UnitPrice,
		&p.DeletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ── Proveedores ───────────────────────────────────────────────────────────────

const supplierColumns = `id, name, contact, email, deleted_at, created_at, updated_at`

// SupplierRepo implementación del puerto SupplierRepository sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (`+supplierColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Name, s.Contact, s.Email, s.DeletedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("nome", s.Name, "já existe um fornecedor com este nome")
		}
		return mapError("insert supplier", err)
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.getOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
}

func (r *SupplierRepo) GetByName(ctx context.Context, name string) (*entity.Supplier, error) {
	return r.getOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE lower(name) = lower($1) AND deleted_at IS NULL`, name)
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		UPDATE suppliers SET name = $2, contact = $3, email = $4, updated_at = $5 WHERE id = $1`,
		s.ID, s.Name, s.Contact, s.Email, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("nome", s.Name, "já existe um fornecedor com este nome")
		}
		return mapError("update supplier", err)
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, includeDeleted bool) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE $1 OR deleted_at IS NULL ORDER BY name`, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SupplierRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE suppliers SET deleted_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("soft delete supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return mapError("delete supplier", err)
	}
	return nil
}

func (r *SupplierRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.Email, &s.DeletedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// ── Destinos ──────────────────────────────────────────────────────────────────

// LocationRepo lectura de la tabla locations (sembrada por la migración).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func (r *LocationRepo) List(ctx context.Context) ([]entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT id, name FROM locations WHERE id = $1`, id)
}

func (r *LocationRepo) GetByName(ctx context.Context, name string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT id, name FROM locations WHERE lower(name) = lower($1)`, name)
}

func (r *LocationRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Location, error) {
	var l entity.Location
	if err := r.q.QueryRow(ctx, query, args...).Scan(&l.ID, &l.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}
