package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockReportDTO datos del PDF de posición de stock (GET /api/relatorios/estoque.pdf).
type StockReportDTO struct {
	Titulo     string
	GeradoEm   time.Time
	Itens      []StockReportItemDTO
	TotalItens int64
	ValorTotal decimal.Decimal
	EmAlerta   int
}

// StockReportItemDTO una fila del reporte.
type StockReportItemDTO struct {
	Produto         string
	Categoria       string
	Quantidade      int64
	EstoqueMinimo   int64
	Lotes           int
	ProximaValidade string
	Valor           decimal.Decimal
	Status          string
}
