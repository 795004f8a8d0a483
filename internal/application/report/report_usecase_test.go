package report_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/report"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
)

type captureRenderer struct {
	got *dto.StockReportDTO
}

func (r *captureRenderer) RenderStockReport(in *dto.StockReportDTO) ([]byte, error) {
	r.got = in
	return []byte("%PDF-fake"), nil
}

type fixture struct {
	products *usecase.ProductUseCase
	ledger   *inventory.LedgerUseCase
	reports  *report.ReportUseCase
	renderer *captureRenderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore(entity.DefaultLocations())
	lots := memory.NewLotRepository(s)
	movs := memory.NewMovementRepository(s)
	products := memory.NewProductRepository(s)
	now := func() time.Time { return time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC) }

	f := &fixture{renderer: &captureRenderer{}}
	f.products = usecase.NewProductUseCase(products, lots, movs, nil)
	f.ledger = inventory.NewLedgerUseCase(memory.NewTxRunner(s), products, memory.NewSupplierRepository(s),
		memory.NewLocationRepository(s), lots, movs, inventory.Options{Now: now})
	f.reports = report.NewReportUseCase(f.ledger, products, f.renderer, now)
	return f
}

func (f *fixture) product(t *testing.T, name string, minimum int64, price string) string {
	t.Helper()
	m := dto.FlexInt(minimum)
	in := dto.CreateProductRequest{Nome: name, EstoqueMinimo: &m}
	if price != "" {
		p := decimal.RequireFromString(price)
		in.PrecoUnitario = &p
	}
	p, err := f.products.Create(context.Background(), in)
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) receive(t *testing.T, productID, code string, qty int64, expires *time.Time) {
	t.Helper()
	_, err := f.ledger.ReceiveStock(context.Background(), inventory.ReceiveInput{
		ProductID: productID, Quantity: qty, LotCode: code, ExpiresAt: expires,
	})
	require.NoError(t, err)
}

func TestStockReportPDF_ValorizaYMarcaAlertas(t *testing.T) {
	f := newFixture(t)
	gaze := f.product(t, "Gaze", 5, "2.50")
	f.product(t, "Atadura", 3, "")
	validade := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	f.receive(t, gaze, "G1", 10, &validade)
	f.receive(t, gaze, "G2", 4, nil)

	out, err := f.reports.StockReportPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out)

	r := f.renderer.got
	require.NotNil(t, r)
	require.Len(t, r.Itens, 2)
	assert.Equal(t, "Atadura", r.Itens[0].Produto, "ordenado por nombre")
	assert.Equal(t, inventory.StockStatusLow, r.Itens[0].Status)
	assert.True(t, r.Itens[0].Valor.IsZero(), "sin precio el valor es cero")

	assert.Equal(t, int64(14), r.Itens[1].Quantidade)
	assert.Equal(t, 2, r.Itens[1].Lotes)
	assert.Equal(t, "01/08/2026", r.Itens[1].ProximaValidade)
	assert.Equal(t, "35", r.Itens[1].Valor.String())

	assert.Equal(t, int64(14), r.TotalItens)
	assert.Equal(t, "35", r.ValorTotal.String())
	assert.Equal(t, 1, r.EmAlerta)
}

func TestMovementsXLSX_ExportaConFiltros(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gaze := f.product(t, "Gaze", 1, "")
	f.receive(t, gaze, "G1", 10, nil)
	_, err := f.ledger.RegisterExit(ctx, inventory.ExitInput{
		ProductID: gaze, Quantity: 4, LocationID: "2", Requester: "Dra. Ana", Notes: "exame",
	})
	require.NoError(t, err)

	out, err := f.reports.MovementsXLSX(ctx, inventory.MovementQuery{Kind: entity.MovementKindExit})
	require.NoError(t, err)

	x, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = x.Close() }()
	rows, err := x.GetRows("Movimentações")
	require.NoError(t, err)
	require.Len(t, rows, 2, "cabecera + una salida")
	assert.Equal(t, "Data", rows[0][0])
	assert.Equal(t, "saida", rows[1][1])
	assert.Equal(t, "Gaze", rows[1][2])
	assert.Equal(t, "G1", rows[1][3])
	assert.Equal(t, "4", rows[1][4])
	assert.Equal(t, "Lab. Clínico", rows[1][7])
	assert.Equal(t, "exame", rows[1][9])
}
