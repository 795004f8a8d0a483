package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// ChartMonths cantidad de meses (incluido el actual) del gráfico de movimentações.
const ChartMonths = 6

var monthAbbr = [...]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// Charts devuelve cantidades mensuales de entradas/saídas y la distribución de saídas por destino
// en la misma ventana de meses.
func (uc *DashboardUseCase) Charts(ctx context.Context) (*dto.ChartsDTO, error) {
	now := uc.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1-ChartMonths, 0)
	end := first.AddDate(0, ChartMonths, 0)

	movs, err := uc.movements.Query(ctx, repository.MovementFilter{From: &first, To: &end})
	if err != nil {
		return nil, fmt.Errorf("dashboard: movimentações: %w", err)
	}
	locations, err := uc.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: locais: %w", err)
	}

	out := &dto.ChartsDTO{
		Movimentacoes:      make([]dto.MonthlyMovementDTO, ChartMonths),
		DistribuicaoLocais: make([]dto.LocationDistributionDTO, 0, len(locations)),
	}
	for i := range out.Movimentacoes {
		out.Movimentacoes[i].Periodo = periodLabel(first.AddDate(0, i, 0))
	}

	perLocation := make(map[string]int64, len(locations))
	for _, m := range movs {
		at := m.OccurredAt.In(first.Location())
		i := (at.Year()-first.Year())*12 + int(at.Month()) - int(first.Month())
		if i < 0 || i >= ChartMonths {
			continue
		}
		switch m.Kind {
		case entity.MovementKindEntry:
			out.Movimentacoes[i].Entradas += m.Quantity
		case entity.MovementKindExit:
			out.Movimentacoes[i].Saidas += m.Quantity
			perLocation[m.LocationID] += m.Quantity
		}
	}
	for _, l := range locations {
		out.DistribuicaoLocais = append(out.DistribuicaoLocais, dto.LocationDistributionDTO{
			LocalID:    l.ID,
			Local:      l.Name,
			Quantidade: perLocation[l.ID],
		})
	}
	return out, nil
}

// periodLabel "Jan/2026".
func periodLabel(t time.Time) string {
	return fmt.Sprintf("%s/%d", monthAbbr[t.Month()-1], t.Year())
}
