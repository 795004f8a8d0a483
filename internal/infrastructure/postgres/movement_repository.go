package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, transaction_id, kind, product_id, lot_id, quantity, occurred_at,
	supplier_id, invoice_number, location_id, requester, notes`

// MovementRepo historial inmutable sobre PostgreSQL. seq desempata movimientos con el mismo occurred_at.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.TransactionID, m.Kind, m.ProductID, m.LotID, m.Quantity, m.OccurredAt,
		nullIfEmpty(m.SupplierID), m.InvoiceNumber, nullIfEmpty(m.LocationID), m.Requester, m.Notes,
	)
	if err != nil {
		return mapError("insert movement", err)
	}
	return nil
}

// Query arma el WHERE dinámicamente con parámetros posicionales.
func (r *MovementRepo) Query(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.ProductIDs != nil && len(f.ProductIDs) == 0 {
		return []*entity.Movement{}, nil
	}

	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.From != nil {
		add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_at < $%d", *f.To)
	}
	if f.ProductIDs != nil {
		add("product_id = ANY($%d)", f.ProductIDs)
	}
	if s := strings.TrimSpace(f.RequesterContains); s != "" {
		add(`lower(requester) LIKE '%%' || lower($%d) || '%%' ESCAPE '\'`, escapeLike(s))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + movementColumns + ` FROM movements`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY occurred_at DESC, seq DESC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapError("query movements", err)
	}
	defer rows.Close()
	list := []*entity.Movement{}
	for rows.Next() {
		var (
			m                  entity.Movement
			supplier, location *string
		)
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.Kind, &m.ProductID, &m.LotID, &m.Quantity, &m.OccurredAt,
			&supplier, &m.InvoiceNumber, &location, &m.Requester, &m.Notes); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.SupplierID = emptyIfNull(supplier)
		m.LocationID = emptyIfNull(location)
		list = append(list, &m)
	}
	return list, rows.Err()
}

// CountByKind cuenta operaciones (transaction_id distintos) en [from, to).
func (r *MovementRepo) CountByKind(ctx context.Context, kind string, from, to time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(DISTINCT transaction_id) FROM movements
		WHERE kind = $1 AND occurred_at >= $2 AND occurred_at < $3`, kind, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

func (r *MovementRepo) ExistsForProduct(ctx context.Context, productID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movements WHERE product_id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("movements by product: %w", err)
	}
	return exists, nil
}

// escapeLike escapa los comodines de LIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
