package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// StockValue valoriza el stock restante al precio unitario del producto.
// Sin precio informado el valor es cero.
func StockValue(product *entity.Product, remaining int64) decimal.Decimal {
	if product == nil || product.UnitPrice == nil || remaining <= 0 {
		return decimal.Zero
	}
	return product.UnitPrice.Mul(decimal.NewFromInt(remaining))
}

// VariationPct calcula la variación porcentual (current - previous) / previous * 100
// redondeada a 1 decimal. Si previous es 0 la variación es 0.
func VariationPct(current, previous int64) decimal.Decimal {
	if previous == 0 {
		return decimal.Zero
	}
	diff := decimal.NewFromInt(current - previous)
	return diff.Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(previous)).Round(1)
}
