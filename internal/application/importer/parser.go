// Package importer implementa la importación de planillas: parseo (csv/xlsx), almacenamiento
// temporal del upload, validación del mapeo columna→campo y aplicación fila por fila.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/estoque-api/internal/domain"
)

// Row fila de datos con su número de línea en la planilla (cabecera = 1).
type Row struct {
	Line  int
	Cells []string // mismo largo que Table.Columns
}

// Value devuelve la celda de la columna i sin espacios alrededor.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Table contenido tabular de un archivo: cabecera más filas no vacías.
type Table struct {
	Columns []string
	Rows    []Row
}

// Index devuelve la posición de la columna (comparación exacta tras trim) o -1.
func (t *Table) Index(column string) int {
	column = strings.TrimSpace(column)
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Parse detecta el formato por la extensión del nombre original.
func Parse(ctx context.Context, filename string, data []byte) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(ctx, data)
	case ".xlsx":
		return parseXLSX(ctx, data)
	default:
		return nil, &domain.FieldError{Field: "arquivo", Value: filename, Msg: "use .csv ou .xlsx", Err: domain.ErrUnsupportedFormat}
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseCSV(ctx context.Context, data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1

	b := &tableBuilder{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &domain.ParseError{Row: pe.StartLine, Column: pe.Column, Msg: pe.Err.Error()}
			}
			return nil, &domain.ParseError{Msg: err.Error()}
		}
		line, _ := r.FieldPos(0)
		if err := b.add(line, record); err != nil {
			return nil, err
		}
	}
	return b.table()
}

// detectDelimiter elige ';' cuando la cabecera tiene más ';' que ',' (planillas exportadas en pt-BR).
func detectDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte{';'}) > bytes.Count(header, []byte{','}) {
		return ';'
	}
	return ','
}

func parseXLSX(ctx context.Context, data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.ParseError{Msg: "xlsx inválido: " + err.Error()}
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, &domain.ParseError{Msg: fmt.Sprintf("planilha %q: %v", sheet, err)}
	}
	defer func() { _ = rows.Close() }()

	b := &tableBuilder{}
	line := 0
	for rows.Next() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// valores crudos: las fechas llegan como número de serie y ParseDate las convierte
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &domain.ParseError{Row: line, Msg: err.Error()}
		}
		if err := b.add(line, cells); err != nil {
			return nil, err
		}
	}
	if err := rows.Error(); err != nil {
		return nil, &domain.ParseError{Row: line, Msg: err.Error()}
	}
	return b.table()
}

// tableBuilder acumula cabecera y filas; las filas en blanco se descartan sin alterar la numeración.
type tableBuilder struct {
	columns []string
	rows    []Row
}

func (b *tableBuilder) add(line int, cells []string) error {
	if b.columns == nil {
		if blank(cells) {
			return &domain.ParseError{Row: line, Msg: "cabeçalho vazio"}
		}
		return b.header(line, cells)
	}
	if blank(cells) {
		return nil
	}
	if len(cells) > len(b.columns) {
		for i := len(b.columns); i < len(cells); i++ {
			if strings.TrimSpace(cells[i]) != "" {
				return &domain.ParseError{Row: line, Column: i + 1, Msg: "valor fora das colunas do cabeçalho"}
			}
		}
		cells = cells[:len(b.columns)]
	}
	row := make([]string, len(b.columns))
	copy(row, cells)
	b.rows = append(b.rows, Row{Line: line, Cells: row})
	return nil
}

func (b *tableBuilder) header(line int, cells []string) error {
	// celdas vacías al final de la cabecera no cuentan como columnas
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	seen := make(map[string]bool, n)
	columns := make([]string, n)
	for i := 0; i < n; i++ {
		name := strings.TrimSpace(cells[i])
		if name == "" {
			return &domain.ParseError{Row: line, Column: i + 1, Msg: "coluna sem nome"}
		}
		if seen[name] {
			return &domain.ParseError{Row: line, Column: i + 1, Msg: fmt.Sprintf("coluna %q duplicada", name)}
		}
		seen[name] = true
		columns[i] = name
	}
	b.columns = columns
	return nil
}

func (b *tableBuilder) table() (*Table, error) {
	if len(b.columns) == 0 {
		return nil, &domain.ParseError{Msg: "arquivo vazio"}
	}
	return &Table{Columns: b.columns, Rows: b.rows}, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
