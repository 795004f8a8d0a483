package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
)

// Tipos de datos importables.
const (
	DataProducts     = "produtos"
	DataSuppliers    = "fornecedores"
	DataCurrentStock = "estoque_atual"
	DataEntries      = "entradas"
	DataExits        = "saidas"
)

// Campos destino.
const (
	FieldName        = "nome"
	FieldCategory    = "categoria"
	FieldMinimum     = "estoque_minimo"
	FieldDescription = "descricao"
	FieldPrice       = "preco_unitario"
	FieldContact     = "contato"
	FieldEmail       = "email"
	FieldProduct     = "produto"
	FieldQuantity    = "quantidade"
	FieldLot         = "lote"
	FieldExpiry      = "validade"
	FieldSupplier    = "fornecedor"
	FieldInvoice     = "numero_nf"
	FieldLocation    = "local"
	FieldRequester   = "solicitante"
	FieldNotes       = "observacoes"
)

// ignored valores de mapeo que descartan la columna.
var ignored = map[string]bool{"": true, "ignorar": true}

type field struct {
	name     string
	required bool
}

var fieldSets = map[string][]field{
	DataProducts: {
		{FieldName, true}, {FieldCategory, false}, {FieldMinimum, false}, {FieldDescription, false}, {FieldPrice, false},
	},
	DataSuppliers: {
		{FieldName, true}, {FieldContact, false}, {FieldEmail, false},
	},
	DataCurrentStock: {
		{FieldProduct, true}, {FieldQuantity, true}, {FieldLot, false}, {FieldExpiry, false},
	},
	DataEntries: {
		{FieldProduct, true}, {FieldQuantity, true}, {FieldSupplier, false}, {FieldLot, false}, {FieldExpiry, false}, {FieldInvoice, false},
	},
	DataExits: {
		{FieldProduct, true}, {FieldQuantity, true}, {FieldLocation, true}, {FieldRequester, true}, {FieldNotes, false},
	},
}

// DataTypes lista los tipos soportados en orden alfabético.
func DataTypes() []string {
	out := make([]string, 0, len(fieldSets))
	for k := range fieldSets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fields devuelve los campos de un tipo de datos (InvalidArgument si el tipo no existe).
func Fields(dataType string) ([]dto.ImportFieldDTO, error) {
	set, ok := fieldSets[dataType]
	if !ok {
		return nil, domain.Invalid("tipo_dados", dataType, "use um de: "+strings.Join(DataTypes(), ", "))
	}
	out := make([]dto.ImportFieldDTO, len(set))
	for i, f := range set {
		out[i] = dto.ImportFieldDTO{Campo: f.name, Obrigatorio: f.required}
	}
	return out, nil
}

// columnMap campo destino → índice de columna.
type columnMap map[string]int

// resolveMapping valida el mapeo coluna→campo contra la tabla y el conjunto de campos del tipo.
func resolveMapping(t *Table, dataType string, mapping map[string]string) (columnMap, error) {
	set, ok := fieldSets[dataType]
	if !ok {
		return nil, domain.Invalid("tipo_dados", dataType, "use um de: "+strings.Join(DataTypes(), ", "))
	}
	allowed := make(map[string]bool, len(set))
	for _, f := range set {
		allowed[f.name] = true
	}

	columns := make([]string, 0, len(mapping))
	for c := range mapping {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	cm := make(columnMap, len(mapping))
	for _, column := range columns {
		target := strings.ToLower(strings.TrimSpace(mapping[column]))
		if ignored[target] {
			continue
		}
		if !allowed[target] {
			return nil, domain.Invalid("mapeamento", column, fmt.Sprintf("campo %q não existe para %s", target, dataType))
		}
		idx := t.Index(column)
		if idx < 0 {
			return nil, domain.Invalid("mapeamento", column, "coluna não encontrada no arquivo")
		}
		if _, dup := cm[target]; dup {
			return nil, domain.Invalid("mapeamento", column, fmt.Sprintf("campo %q mapeado mais de uma vez", target))
		}
		cm[target] = idx
	}

	var missing []string
	for _, f := range set {
		if _, ok := cm[f.name]; f.required && !ok {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, domain.Invalid("mapeamento", "", "campos obrigatórios sem coluna: "+strings.Join(missing, ", "))
	}
	return cm, nil
}

// get devuelve el valor del campo en la fila ("" si el campo no está mapeado).
func (cm columnMap) get(r Row, name string) string {
	idx, ok := cm[name]
	if !ok {
		return ""
	}
	return r.Value(idx)
}
