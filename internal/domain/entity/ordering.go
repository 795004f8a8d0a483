package entity

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Un Collator no es seguro entre goroutines: se crea uno por ordenación.
func newNameCollator() *collate.Collator {
	return collate.New(language.BrazilianPortuguese, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// SortProductsByName ordena por nombre ascendente sin distinguir mayúsculas (pt-BR); el ID desempata.
func SortProductsByName(list []*Product) {
	c := newNameCollator()
	sort.SliceStable(list, func(i, j int) bool {
		if r := c.CompareString(list[i].Name, list[j].Name); r != 0 {
			return r < 0
		}
		return list[i].ID < list[j].ID
	})
}

// SortSuppliersByName ordena proveedores con el mismo criterio que los productos.
func SortSuppliersByName(list []*Supplier) {
	c := newNameCollator()
	sort.SliceStable(list, func(i, j int) bool {
		if r := c.CompareString(list[i].Name, list[j].Name); r != 0 {
			return r < 0
		}
		return list[i].ID < list[j].ID
	})
}

// CompareNames compara dos nombres con el criterio de listado.
func CompareNames(a, b string) int {
	return newNameCollator().CompareString(a, b)
}
