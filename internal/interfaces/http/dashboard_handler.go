package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/estoque-api/internal/application/analytics"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log *logger.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// Metrics godoc
// @Summary      Indicadores do dashboard
// @Description  Totais de produtos e itens, entradas/saídas do mês com variação sobre o mês
// @Description  anterior, estoque baixo e validade próxima. Resultado em cache até a próxima mutação.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=dto.DashboardMetricsDTO}
// @Router       /api/dashboard/metricas [get]
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	out, err := h.uc.MetricsDTO(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Charts godoc
// @Summary      Gráficos do dashboard
// @Description  Movimentações dos últimos seis meses e distribuição das saídas por local.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=dto.ChartsDTO}
// @Router       /api/dashboard/graficos [get]
func (h *DashboardHandler) Charts(c *fiber.Ctx) error {
	out, err := h.uc.Charts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// MonthlyMovements responde solo la serie mensual (ruta usada por clientes antiguos).
// GET /api/dashboard/graficos/movimentacoes
func (h *DashboardHandler) MonthlyMovements(c *fiber.Ctx) error {
	out, err := h.uc.Charts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out.Movimentacoes)
}

// LocationDistribution responde solo la distribución por destino.
// GET /api/dashboard/graficos/distribuicao-locais
func (h *DashboardHandler) LocationDistribution(c *fiber.Ctx) error {
	out, err := h.uc.Charts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out.DistribuicaoLocais)
}

// Alerts godoc
// @Summary      Alertas de estoque baixo e validade
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=[]dto.AlertDTO}
// @Router       /api/dashboard/alertas [get]
func (h *DashboardHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.uc.Alerts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
