package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Categorías conocidas del catálogo; cualquier otro texto se acepta tal cual.
var KnownCategories = []string{"Medicamentos", "Materiais", "Equipamentos", "Descartáveis", "Antissépticos"}

// DefaultMinimumStock se aplica cuando el cliente no envía estoque_minimo.
const DefaultMinimumStock int64 = 10

// Product representa un producto del catálogo. El stock no vive aquí: se deriva de los lotes.
type Product struct {
	ID           string
	Name         string
	Category     string
	MinimumStock int64
	Description  string
	UnitPrice    *decimal.Decimal // opcional
	DeletedAt    *time.Time       // soft-delete (force)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDeleted indica si el producto fue dado de baja lógicamente.
func (p *Product) IsDeleted() bool { return p.DeletedAt != nil }

// NameKey normaliza un nombre para comparaciones case-insensitive
// (trim, espacios colapsados, case folding Unicode). Un Caser no es seguro entre goroutines.
func NameKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// CanonicalCategory devuelve la grafía conocida si coincide sin distinguir mayúsculas.
func CanonicalCategory(category string) string {
	c := strings.TrimSpace(category)
	key := NameKey(c)
	for _, known := range KnownCategories {
		if NameKey(known) == key {
			return known
		}
	}
	return c
}
