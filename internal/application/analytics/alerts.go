package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// Tipos y prioridades de alerta.
const (
	AlertLowStock   = "estoque_baixo"
	AlertNearExpiry = "validade_proxima"
	AlertExpired    = "vencido"

	PriorityHigh   = "alta"
	PriorityMedium = "media"
)

// urgentDays lotes que vencen dentro de este plazo suben a prioridad alta.
const urgentDays = 7

// Alerts lista productos con stock bajo y lotes vencidos o por vencer. Alta prioridad primero.
func (uc *DashboardUseCase) Alerts(ctx context.Context) ([]dto.AlertDTO, error) {
	products, err := uc.products.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("dashboard: produtos: %w", err)
	}
	lots, err := uc.lots.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: lotes: %w", err)
	}

	active := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		active[p.ID] = p
	}
	day := today(uc.now())
	limit := day.AddDate(0, 0, uc.nearExpiryDays)
	stock := make(map[string]int64, len(products))

	alerts := make([]dto.AlertDTO, 0)
	for _, l := range lots {
		p, ok := active[l.ProductID]
		if !ok {
			continue
		}
		stock[p.ID] += l.Remaining
		if !l.Available() || !l.ExpiresBy(limit) {
			continue
		}
		alerts = append(alerts, expiryAlert(p, l, day))
	}
	for _, p := range products {
		qty := stock[p.ID]
		if qty > p.MinimumStock {
			continue
		}
		prio := PriorityMedium
		if qty == 0 {
			prio = PriorityHigh
		}
		alerts = append(alerts, dto.AlertDTO{
			Tipo:       AlertLowStock,
			Titulo:     "Estoque baixo: " + p.Name,
			Descricao:  fmt.Sprintf("Quantidade atual %d (mínimo %d)", qty, p.MinimumStock),
			Prioridade: prio,
			ProdutoID:  p.ID,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Prioridade != alerts[j].Prioridade {
			return alerts[i].Prioridade == PriorityHigh
		}
		return alerts[i].Tipo > alerts[j].Tipo
	})
	return alerts, nil
}

func expiryAlert(p *entity.Product, l *entity.Lot, day time.Time) dto.AlertDTO {
	expires := l.ExpiresAt.Format("02/01/2006")
	days := int(l.ExpiresAt.Sub(day).Hours() / 24)
	a := dto.AlertDTO{ProdutoID: p.ID, LoteID: l.ID}
	switch {
	case days < 0:
		a.Tipo = AlertExpired
		a.Prioridade = PriorityHigh
		a.Titulo = "Lote vencido: " + l.Code
		a.Descricao = fmt.Sprintf("%s: lote %s venceu em %s (%d unidades)", p.Name, l.Code, expires, l.Remaining)
	default:
		a.Tipo = AlertNearExpiry
		a.Prioridade = PriorityMedium
		if days <= urgentDays {
			a.Prioridade = PriorityHigh
		}
		a.Titulo = "Validade próxima: " + l.Code
		a.Descricao = fmt.Sprintf("%s: lote %s vence em %s (%d dias)", p.Name, l.Code, expires, days)
	}
	return a
}
