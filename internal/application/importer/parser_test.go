package importer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/estoque-api/internal/application/importer"
	"github.com/jhoicas/estoque-api/internal/domain"
)

func xlsxBytes(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParse_CSVPuntoYComaConBOM(t *testing.T) {
	data := []byte("\xEF\xBB\xBFNome;Categoria;Preço\nDipirona;Medicamentos;\"12,50\"\n\n;;\nGaze;Materiais;3\n")
	table, err := importer.Parse(context.Background(), "produtos.CSV", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Nome", "Categoria", "Preço"}, table.Columns)
	require.Len(t, table.Rows, 2, "las filas en blanco se descartan")
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, "12,50", table.Rows[0].Value(2))
	assert.Equal(t, 5, table.Rows[1].Line, "la numeración sigue la planilla")
}

func TestParse_CSVComaYFilasCortas(t *testing.T) {
	table, err := importer.Parse(context.Background(), "a.csv", []byte("produto,quantidade,lote\nLuvas,10\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"Luvas", "10", ""}, table.Rows[0].Cells)
	assert.Equal(t, 1, table.Index("quantidade"))
	assert.Equal(t, -1, table.Index("validade"))
}

func TestParse_XLSX(t *testing.T) {
	data := xlsxBytes(t,
		[]interface{}{"produto", "quantidade", "validade"},
		[]interface{}{"Vacina", 10, 46090},
		[]interface{}{" "},
		[]interface{}{"Soro", 5, "2026-08-01"},
	)
	table, err := importer.Parse(context.Background(), "estoque.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"produto", "quantidade", "validade"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "46090", table.Rows[0].Value(2))
	assert.Equal(t, 4, table.Rows[1].Line)
}

func TestParse_Errores(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		data     string
		want     error
		row      int
	}{
		{"extensión no soportada", "dados.xls", "x", domain.ErrUnsupportedFormat, 0},
		{"sin extensión", "dados", "x", domain.ErrUnsupportedFormat, 0},
		{"vacío", "a.csv", "", domain.ErrParse, 0},
		{"comilla suelta", "a.csv", "nome\nGa\"ze\n", domain.ErrParse, 2},
		{"columna duplicada", "a.csv", "nome,nome\nx,y\n", domain.ErrParse, 1},
		{"columna sin nombre", "a.csv", "nome,,qtd\nx,y,z\n", domain.ErrParse, 1},
		{"valor fuera de cabecera", "a.csv", "nome\nx,y\n", domain.ErrParse, 2},
		{"xlsx corrupto", "a.xlsx", "no es un zip", domain.ErrParse, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := importer.Parse(context.Background(), tc.filename, []byte(tc.data))
			require.ErrorIs(t, err, tc.want)
			var pe *domain.ParseError
			if tc.row > 0 && assert.True(t, errors.As(err, &pe)) {
				assert.Equal(t, tc.row, pe.Row)
			}
		})
	}
}

func TestParse_RespetaCancelacion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := importer.Parse(ctx, "a.csv", []byte("nome\nx\n"))
	assert.ErrorIs(t, err, context.Canceled)
}
