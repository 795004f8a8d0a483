package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, supplier_id, code, received, remaining, expires_at, invoice_number, received_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO lots (`+lotColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lot.ID, lot.ProductID, nullIfEmpty(lot.SupplierID), lot.Code, lot.Received, lot.Remaining,
		lot.ExpiresAt, lot.InvoiceNumber, lot.ReceivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("lote", lot.Code, "código de lote já existe para o produto")
		}
		return mapError("insert lot", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

// ListAvailableForUpdate bloquea los lotes con saldo del producto en orden de ID.
func (r *LotRepo) ListAvailableForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(ctx, `
		SELECT `+lotColumns+` FROM lots
		WHERE product_id = $1 AND remaining > 0
		ORDER BY id
		FOR UPDATE`, productID)
}

func (r *LotRepo) UpdateRemaining(ctx context.Context, id string, remaining int64) error {
	cmd, err := r.q.Exec(ctx, `UPDATE lots SET remaining = $2 WHERE id = $1`, id, remaining)
	if err != nil {
		return mapError("update lot remaining", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("lote_id", id)
	}
	return nil
}

func (r *LotRepo) ListByProduct(ctx context.Context, productID string, onlyAvailable bool) ([]*entity.Lot, error) {
	return r.list(ctx, `
		SELECT `+lotColumns+` FROM lots
		WHERE product_id = $1 AND (NOT $2 OR remaining > 0)
		ORDER BY id`, productID, onlyAvailable)
}

func (r *LotRepo) ListAvailable(ctx context.Context) ([]*entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE remaining > 0 ORDER BY id`)
}

func (r *LotRepo) SumRemaining(ctx context.Context, productID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(remaining), 0) FROM lots WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum remaining: %w", err)
	}
	return total, nil
}

func (r *LotRepo) ExistsBySupplier(ctx context.Context, supplierID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM lots WHERE supplier_id = $1)`, supplierID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lots by supplier: %w", err)
	}
	return exists, nil
}

func (r *LotRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get lot", err)
	}
	return l, nil
}

func (r *LotRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list lots", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list lots", err)
	}
	return list, nil
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var (
		l        entity.Lot
		supplier *string
	)
	if err := row.Scan(&l.ID, &l.ProductID, &supplier, &l.Code, &l.Received, &l.Remaining,
		&l.ExpiresAt, &l.InvoiceNumber, &l.ReceivedAt); err != nil {
		return nil, err
	}
	l.SupplierID = emptyIfNull(supplier)
	return &l, nil
}
