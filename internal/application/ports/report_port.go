package ports

import "github.com/jhoicas/estoque-api/internal/application/dto"

// StockReportRenderer genera el PDF de posición de stock. Cualquier adaptador (maroto, mock) implementa esta interfaz.
type StockReportRenderer interface {
	RenderStockReport(report *dto.StockReportDTO) ([]byte, error)
}
