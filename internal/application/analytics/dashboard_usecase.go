// Package analytics contiene el agregador de métricas del dashboard:
// tarjetas, gráficos y alertas derivados siempre del estado de lotes y movimientos.
package analytics

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/ports"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// Estados de las tarjetas de alerta.
const (
	StatusNormal = "normal"
	StatusAlert  = "alerta"
)

// DashboardMetrics valores crudos del dashboard (no persistidos; se recalculan).
type DashboardMetrics struct {
	TotalProducts       int64
	TotalItems          int64
	EntriesThisMonth    int64
	EntriesVariationPct decimal.Decimal
	ExitsThisMonth      int64
	ExitsVariationPct   decimal.Decimal
	LowStockCount       int64
	NearExpiryCount     int64
	PendingOrdersCount  int64 // no existe entidad de pedidos: siempre 0
	ComputedAt          time.Time
}

// Options parámetros del agregador.
type Options struct {
	NearExpiryDays int           // por defecto 30
	CacheTTL       time.Duration // 0 = sin caché
	Metrics        ports.LedgerMetrics
	Now            func() time.Time
}

// DashboardUseCase calcula métricas, gráficos y alertas.
//
// Caché: el resultado se guarda junto con la generación vigente; cada evento publicado
// (catálogo o libro) incrementa la generación, así que después de una mutación nunca se
// devuelve un valor anterior. También expira por TTL y al cambiar de día.
type DashboardUseCase struct {
	products  repository.ProductRepository
	lots      repository.LotRepository
	movements repository.MovementRepository
	locations repository.LocationRepository

	nearExpiryDays int
	ttl            time.Duration
	metrics        ports.LedgerMetrics
	now            func() time.Time

	generation atomic.Uint64
	mu         sync.Mutex
	cached     *DashboardMetrics
	cachedGen  uint64
	cachedAt   time.Time
}

// NewDashboardUseCase construye el caso de uso. Si events no es nil se suscribe para invalidar la caché.
func NewDashboardUseCase(
	products repository.ProductRepository,
	lots repository.LotRepository,
	movements repository.MovementRepository,
	locations repository.LocationRepository,
	events ports.EventSubscriber,
	opts Options,
) *DashboardUseCase {
	uc := &DashboardUseCase{
		products:       products,
		lots:           lots,
		movements:      movements,
		locations:      locations,
		nearExpiryDays: opts.NearExpiryDays,
		ttl:            opts.CacheTTL,
		metrics:        opts.Metrics,
		now:            opts.Now,
	}
	if uc.nearExpiryDays <= 0 {
		uc.nearExpiryDays = 30
	}
	if uc.metrics == nil {
		uc.metrics = ports.NopMetrics{}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if events != nil {
		events.Subscribe(func(entity.Event) { uc.Invalidate() })
	}
	return uc
}

// Invalidate marca la caché como obsoleta.
func (uc *DashboardUseCase) Invalidate() {
	uc.generation.Add(1)
}

// Metrics devuelve las métricas (de caché si sigue vigente).
func (uc *DashboardUseCase) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	now := uc.now()
	gen := uc.generation.Load()

	if uc.ttl > 0 {
		uc.mu.Lock()
		if c := uc.cached; c != nil && uc.cachedGen == gen && now.Sub(uc.cachedAt) < uc.ttl && sameDay(uc.cachedAt, now) {
			uc.mu.Unlock()
			uc.metrics.ObserveDashboardCache(true)
			out := *c
			return &out, nil
		}
		uc.mu.Unlock()
		uc.metrics.ObserveDashboardCache(false)
	}

	m, err := uc.compute(ctx, now)
	if err != nil {
		return nil, err
	}
	if uc.ttl > 0 {
		uc.mu.Lock()
		uc.cached, uc.cachedGen, uc.cachedAt = m, gen, now
		uc.mu.Unlock()
	}
	out := *m
	return &out, nil
}

// compute lee lotes y movimientos sin bloquear el libro; tolera ir una operación por detrás.
// Los conteos mensuales corren en paralelo con la lectura de catálogo y lotes.
func (uc *DashboardUseCase) compute(ctx context.Context, now time.Time) (*DashboardMetrics, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	prevMonth := monthStart.AddDate(0, -1, 0)

	var (
		products                                     []*entity.Product
		lots                                         []*entity.Lot
		entriesCur, entriesPrev, exitsCur, exitsPrev int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = uc.products.List(gctx, false)
		return wrap("produtos", err)
	})
	g.Go(func() (err error) {
		lots, err = uc.lots.ListAvailable(gctx)
		return wrap("lotes", err)
	})
	g.Go(func() (err error) {
		entriesCur, err = uc.movements.CountByKind(gctx, entity.MovementKindEntry, monthStart, nextMonth)
		return wrap("entradas do mês", err)
	})
	g.Go(func() (err error) {
		entriesPrev, err = uc.movements.CountByKind(gctx, entity.MovementKindEntry, prevMonth, monthStart)
		return wrap("entradas do mês anterior", err)
	})
	g.Go(func() (err error) {
		exitsCur, err = uc.movements.CountByKind(gctx, entity.MovementKindExit, monthStart, nextMonth)
		return wrap("saídas do mês", err)
	})
	g.Go(func() (err error) {
		exitsPrev, err = uc.movements.CountByKind(gctx, entity.MovementKindExit, prevMonth, monthStart)
		return wrap("saídas do mês anterior", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	active := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		active[p.ID] = p
	}
	stock := make(map[string]int64, len(products))
	limit := today(now).AddDate(0, 0, uc.nearExpiryDays)

	m := &DashboardMetrics{
		TotalProducts:       int64(len(products)),
		EntriesThisMonth:    int64(entriesCur),
		EntriesVariationPct: inventory.VariationPct(int64(entriesCur), int64(entriesPrev)),
		ExitsThisMonth:      int64(exitsCur),
		ExitsVariationPct:   inventory.VariationPct(int64(exitsCur), int64(exitsPrev)),
		ComputedAt:          now,
	}
	for _, l := range lots {
		if _, ok := active[l.ProductID]; !ok {
			continue
		}
		stock[l.ProductID] += l.Remaining
		m.TotalItems += l.Remaining
		if l.Available() && l.ExpiresBy(limit) {
			m.NearExpiryCount++
		}
	}
	for _, p := range products {
		if stock[p.ID] <= p.MinimumStock {
			m.LowStockCount++
		}
	}
	return m, nil
}

// MetricsDTO devuelve las métricas en el formato de tarjetas del cliente.
func (uc *DashboardUseCase) MetricsDTO(ctx context.Context) (*dto.DashboardMetricsDTO, error) {
	m, err := uc.Metrics(ctx)
	if err != nil {
		return nil, err
	}
	return toMetricsDTO(m), nil
}

func toMetricsDTO(m *DashboardMetrics) *dto.DashboardMetricsDTO {
	entries := m.EntriesVariationPct.InexactFloat64()
	exits := m.ExitsVariationPct.InexactFloat64()
	return &dto.DashboardMetricsDTO{
		TotalProdutos:           dto.MetricCardDTO{Valor: m.TotalProducts, Label: "Produtos Cadastrados"},
		TotalItensEstoque:       dto.MetricCardDTO{Valor: m.TotalItems, Label: "Total de Itens"},
		EntradasMes:             dto.MetricCardDTO{Valor: m.EntriesThisMonth, Label: "Entradas do Mês", Variacao: &entries},
		SaidasMes:               dto.MetricCardDTO{Valor: m.ExitsThisMonth, Label: "Saídas do Mês", Variacao: &exits},
		ProdutosEstoqueBaixo:    dto.MetricCardDTO{Valor: m.LowStockCount, Label: "Estoque Baixo", Status: alertStatus(m.LowStockCount)},
		ProdutosValidadeProxima: dto.MetricCardDTO{Valor: m.NearExpiryCount, Label: "Validade Próxima", Status: alertStatus(m.NearExpiryCount)},
		PedidosPendentes:        dto.MetricCardDTO{Valor: m.PendingOrdersCount, Label: "Pedidos Pendentes", Status: alertStatus(m.PendingOrdersCount)},
		CalculadoEm:             m.ComputedAt.Format(time.RFC3339),
	}
}

func alertStatus(n int64) string {
	if n > 0 {
		return StatusAlert
	}
	return StatusNormal
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
