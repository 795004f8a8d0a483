// Package report arma los relatórios exportables: posición de stock (PDF) y
// exportación del historial de movimientos (XLSX).
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/ports"
	domaininv "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// StockSource vista de stock e historial (implementada por inventory.LedgerUseCase).
type StockSource interface {
	StockView(ctx context.Context) ([]dto.StockItemResponse, error)
	QueryMovements(ctx context.Context, q inventory.MovementQuery) ([]dto.MovementResponse, error)
}

// ReportUseCase genera los relatórios.
type ReportUseCase struct {
	stock    StockSource
	products repository.ProductRepository
	renderer ports.StockReportRenderer
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso. now nil = time.Now.
func NewReportUseCase(stock StockSource, products repository.ProductRepository, renderer ports.StockReportRenderer, now func() time.Time) *ReportUseCase {
	if now == nil {
		now = time.Now
	}
	return &ReportUseCase{stock: stock, products: products, renderer: renderer, now: now}
}

// StockReport arma los datos del relatório de posición de stock valorizado.
func (uc *ReportUseCase) StockReport(ctx context.Context) (*dto.StockReportDTO, error) {
	items, err := uc.stock.StockView(ctx)
	if err != nil {
		return nil, err
	}
	report := &dto.StockReportDTO{
		Titulo:     "Relatório de Estoque",
		GeradoEm:   uc.now(),
		Itens:      make([]dto.StockReportItemDTO, 0, len(items)),
		ValorTotal: decimal.Zero,
	}
	for _, it := range items {
		product, err := uc.products.GetByID(ctx, it.ProdutoID)
		if err != nil {
			return nil, err
		}
		value := domaininv.StockValue(product, it.QuantidadeAtual)
		report.Itens = append(report.Itens, dto.StockReportItemDTO{
			Produto:         it.ProdutoNome,
			Categoria:       it.Categoria,
			Quantidade:      it.QuantidadeAtual,
			EstoqueMinimo:   it.EstoqueMinimo,
			Lotes:           it.LotesAtivos,
			ProximaValidade: brDate(it.ProximaValidade),
			Valor:           value,
			Status:          it.Status,
		})
		report.TotalItens += it.QuantidadeAtual
		report.ValorTotal = report.ValorTotal.Add(value)
		if it.Status == inventory.StockStatusLow {
			report.EmAlerta++
		}
	}
	return report, nil
}

// StockReportPDF renderiza el relatório de stock.
func (uc *ReportUseCase) StockReportPDF(ctx context.Context) ([]byte, error) {
	report, err := uc.StockReport(ctx)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderStockReport(report)
}

var movementHeader = []interface{}{
	"Data", "Tipo", "Produto", "Lote", "Quantidade", "Fornecedor", "NF", "Destino", "Solicitante", "Observações", "Transação",
}

// MovementsXLSX exporta el historial filtrado (mismos filtros que la consulta) a una planilla.
func (uc *ReportUseCase) MovementsXLSX(ctx context.Context, q inventory.MovementQuery) ([]byte, error) {
	movs, err := uc.stock.QueryMovements(ctx, q)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Movimentações"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, fmt.Errorf("xlsx: planilha: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &movementHeader); err != nil {
		return nil, fmt.Errorf("xlsx: cabeçalho: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}

	for i, m := range movs {
		values := []interface{}{
			m.Data.Format("02/01/2006 15:04"),
			m.Tipo,
			m.ProdutoNome,
			m.LoteCodigo,
			m.Quantidade,
			m.FornecedorNome,
			m.NumeroNF,
			m.LocalDestino,
			m.Solicitante,
			m.Observacoes,
			m.TransacaoID,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx: célula: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: linha %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 17)
	_ = f.SetColWidth(sheet, "C", "C", 30)
	_ = f.SetColWidth(sheet, "I", "J", 25)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escrever: %w", err)
	}
	return buf.Bytes(), nil
}

// brDate convierte "2026-08-01" en "01/08/2026".
func brDate(iso *string) string {
	if iso == nil {
		return ""
	}
	t, err := time.Parse("2006-01-02", *iso)
	if err != nil {
		return *iso
	}
	return t.Format("02/01/2006")
}
