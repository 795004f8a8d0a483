package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// Estados de stock de un producto.
const (
	StockStatusLow    = "baixo"
	StockStatusNormal = "normal"
)

// MovementQuery filtros del historial a nivel de caso de uso.
type MovementQuery struct {
	Kind              string // entity.MovementKind*; vacío = todos
	From              *time.Time
	To                *time.Time // exclusivo
	RequesterContains string
	ProductContains   string // subcadena del nombre del producto, sin mayúsculas
	Limit             int
	Offset            int
}

// ListAvailableLots devuelve los lotes con saldo del producto en orden canónico de asignación.
func (uc *LedgerUseCase) ListAvailableLots(ctx context.Context, productID string) ([]dto.LotResponse, error) {
	if _, err := uc.anyProduct(ctx, productID); err != nil {
		return nil, err
	}
	lots, err := uc.lots.ListByProduct(ctx, productID, true)
	if err != nil {
		return nil, err
	}
	inventory.SortForAllocation(lots)
	today := dateOf(uc.now())
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, toLotResponse(l, today))
	}
	return out, nil
}

// CurrentStock suma el restante de todos los lotes del producto.
func (uc *LedgerUseCase) CurrentStock(ctx context.Context, productID string) (int64, error) {
	if _, err := uc.anyProduct(ctx, productID); err != nil {
		return 0, err
	}
	return uc.lots.SumRemaining(ctx, productID)
}

// StockView agrega por producto activo: cantidad actual, lotes con saldo, próxima validade y estado.
func (uc *LedgerUseCase) StockView(ctx context.Context) ([]dto.StockItemResponse, error) {
	products, err := uc.products.List(ctx, false)
	if err != nil {
		return nil, err
	}
	entity.SortProductsByName(products)
	lots, err := uc.lots.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	type agg struct {
		qty  int64
		lots int
		next *time.Time
	}
	byProduct := make(map[string]*agg, len(products))
	for _, l := range lots {
		a := byProduct[l.ProductID]
		if a == nil {
			a = &agg{}
			byProduct[l.ProductID] = a
		}
		a.qty += l.Remaining
		a.lots++
		if l.ExpiresAt != nil && (a.next == nil || l.ExpiresAt.Before(*a.next)) {
			a.next = l.ExpiresAt
		}
	}

	out := make([]dto.StockItemResponse, 0, len(products))
	for _, p := range products {
		item := dto.StockItemResponse{
			ProdutoID:     p.ID,
			ProdutoNome:   p.Name,
			Categoria:     p.Category,
			EstoqueMinimo: p.MinimumStock,
			Status:        StockStatusNormal,
		}
		if a := byProduct[p.ID]; a != nil {
			item.QuantidadeAtual = a.qty
			item.LotesAtivos = a.lots
			item.ProximaValidade = formatDate(a.next)
		}
		if item.QuantidadeAtual <= p.MinimumStock {
			item.Status = StockStatusLow
		}
		out = append(out, item)
	}
	return out, nil
}

// QueryMovements consulta el historial, del más reciente al más antiguo, con nombres resueltos.
func (uc *LedgerUseCase) QueryMovements(ctx context.Context, q MovementQuery) ([]dto.MovementResponse, error) {
	filter := repository.MovementFilter{
		Kind:              q.Kind,
		From:              q.From,
		To:                q.To,
		RequesterContains: strings.TrimSpace(q.RequesterContains),
		Limit:             q.Limit,
		Offset:            q.Offset,
	}
	names, err := uc.names(ctx)
	if err != nil {
		return nil, err
	}
	products, err := uc.products.List(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		names.products[p.ID] = p.Name
	}
	if needle := entity.NameKey(q.ProductContains); needle != "" {
		filter.ProductIDs = []string{}
		for _, p := range products {
			if strings.Contains(entity.NameKey(p.Name), needle) {
				filter.ProductIDs = append(filter.ProductIDs, p.ID)
			}
		}
	}

	movs, err := uc.movements.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := names.loadSuppliers(ctx, uc.suppliers); err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		if _, ok := names.lots[m.LotID]; !ok {
			l, err := uc.lots.GetByID(ctx, m.LotID)
			if err != nil {
				return nil, err
			}
			if l != nil {
				names.lots[l.ID] = l.Code
			}
		}
		out = append(out, names.movement(m))
	}
	return out, nil
}

func (uc *LedgerUseCase) anyProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFoundProduct(id)
	}
	return p, nil
}
