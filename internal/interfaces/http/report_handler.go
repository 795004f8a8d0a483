package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/report"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler descarga de relatórios (PDF de estoque y XLSX de movimentações).
type ReportHandler struct {
	uc  *report.ReportUseCase
	log *logger.Logger
	now func() time.Time
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log, now: time.Now}
}

// StockPDF godoc
// @Summary      Relatório de posição de estoque (PDF)
// @Tags         relatorios
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/relatorios/estoque.pdf [get]
func (h *ReportHandler) StockPDF(c *fiber.Ctx) error {
	pdf, err := h.uc.StockReportPDF(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, attachment("estoque", h.now(), "pdf"))
	return c.Send(pdf)
}

// MovementsXLSX godoc
// @Summary      Exportar movimentações (XLSX)
// @Description  Aceita os mesmos filtros de /api/estoque/movimentacoes.
// @Tags         relatorios
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        tipo         query  string  false  "entrada | saida"
// @Param        data_inicio  query  string  false  "Data inicial (inclusive)"
// @Param        data_fim     query  string  false  "Data final (inclusive)"
// @Param        solicitante  query  string  false  "Trecho do solicitante"
// @Param        produto      query  string  false  "Trecho do nome do produto"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/relatorios/movimentacoes.xlsx [get]
func (h *ReportHandler) MovementsXLSX(c *fiber.Ctx) error {
	q, err := parseMovementQuery(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	data, err := h.uc.MovementsXLSX(c.UserContext(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, attachment("movimentacoes", h.now(), "xlsx"))
	return c.Send(data)
}

func attachment(name string, at time.Time, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s-%s.%s"`, name, at.Format("2006-01-02"), ext)
}
