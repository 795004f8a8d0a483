package analytics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/analytics"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/ports"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/events"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type cacheRecorder struct {
	ports.NopMetrics
	mu           sync.Mutex
	hits, misses int
}

func (r *cacheRecorder) ObserveDashboardCache(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

type fixture struct {
	now       time.Time
	bus       *events.Bus
	products  *usecase.ProductUseCase
	ledger    *inventory.LedgerUseCase
	dashboard *analytics.DashboardUseCase
	recorder  *cacheRecorder
}

// newFixture arma el dashboard sobre un store en memoria. subscribe=false deja la caché sin invalidación por eventos.
func newFixture(t *testing.T, ttl time.Duration, subscribe bool) *fixture {
	t.Helper()
	s := memory.NewStore(entity.DefaultLocations())
	f := &fixture{
		now:      time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC),
		bus:      events.NewBus(nil),
		recorder: &cacheRecorder{},
	}
	clock := func() time.Time { return f.now }
	lots := memory.NewLotRepository(s)
	movs := memory.NewMovementRepository(s)
	products := memory.NewProductRepository(s)

	f.products = usecase.NewProductUseCase(products, lots, movs, f.bus)
	f.ledger = inventory.NewLedgerUseCase(
		memory.NewTxRunner(s), products, memory.NewSupplierRepository(s), memory.NewLocationRepository(s),
		lots, movs, inventory.Options{Events: f.bus, Now: clock},
	)
	var sub ports.EventSubscriber
	if subscribe {
		sub = f.bus
	}
	f.dashboard = analytics.NewDashboardUseCase(products, lots, movs, memory.NewLocationRepository(s), sub, analytics.Options{
		NearExpiryDays: 30,
		CacheTTL:       ttl,
		Metrics:        f.recorder,
		Now:            clock,
	})
	return f
}

func (f *fixture) product(t *testing.T, name string, minimum int64) string {
	t.Helper()
	m := dto.FlexInt(minimum)
	p, err := f.products.Create(context.Background(), dto.CreateProductRequest{Nome: name, EstoqueMinimo: &m})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) receive(t *testing.T, productID string, qty int64, expires *time.Time) string {
	t.Helper()
	resp, err := f.ledger.ReceiveStock(context.Background(), inventory.ReceiveInput{ProductID: productID, Quantity: qty, ExpiresAt: expires})
	require.NoError(t, err)
	return resp.Lote.ID
}

func (f *fixture) exit(t *testing.T, productID string, qty int64, location string) {
	t.Helper()
	_, err := f.ledger.RegisterExit(context.Background(), inventory.ExitInput{
		ProductID: productID, Quantity: qty, LocationID: location, Requester: "Dr. Paulo",
	})
	require.NoError(t, err)
}

func daysFrom(base time.Time, n int) *time.Time {
	y, m, d := base.Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return &t
}

// ──────────────────────────────────────────────────────────────────────────────
// Métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestMetrics_ConteosBasicos(t *testing.T) {
	f := newFixture(t, 0, false)
	ctx := context.Background()

	justo := f.product(t, "Bandagem", 10)
	sobra := f.product(t, "Agulha", 10)
	validade := f.product(t, "Vacina", 1)
	removido := f.product(t, "Produto antigo", 1)

	f.receive(t, justo, 10, nil)
	f.receive(t, sobra, 11, nil)
	f.receive(t, validade, 5, daysFrom(f.now, 29))
	f.receive(t, validade, 5, daysFrom(f.now, 31))
	f.receive(t, validade, 5, daysFrom(f.now, -1))
	f.receive(t, removido, 7, daysFrom(f.now, 1))
	_, err := f.products.Delete(ctx, removido, true)
	require.NoError(t, err)

	m, err := f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.TotalProducts)
	assert.Equal(t, int64(36), m.TotalItems)
	assert.Equal(t, int64(1), m.LowStockCount, "10 con mínimo 10 es bajo; 11 no")
	assert.Equal(t, int64(2), m.NearExpiryCount, "vence en 29 días y vencido ayer; 31 días queda fuera")
	assert.Equal(t, int64(6), m.EntriesThisMonth)
	assert.Equal(t, int64(0), m.ExitsThisMonth)
	assert.True(t, m.EntriesVariationPct.IsZero(), "sin mes anterior la variación es 0")
	assert.Equal(t, int64(0), m.PendingOrdersCount)
}

func TestMetrics_LoteAgotadoNoCuentaParaValidade(t *testing.T) {
	f := newFixture(t, 0, false)
	p := f.product(t, "Soro", 1)
	f.receive(t, p, 4, daysFrom(f.now, 3))
	f.exit(t, p, 4, "1")

	m, err := f.dashboard.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.NearExpiryCount)
	assert.Equal(t, int64(1), m.LowStockCount)
}

func TestMetrics_VariacionMensual(t *testing.T) {
	f := newFixture(t, 0, false)
	p := f.product(t, "Gaze", 1)

	f.now = time.Date(2026, time.April, 10, 9, 0, 0, 0, time.UTC)
	f.receive(t, p, 10, nil)
	f.receive(t, p, 10, nil)

	f.now = time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC)
	f.receive(t, p, 5, nil)
	f.receive(t, p, 5, nil)
	f.receive(t, p, 5, nil)
	f.exit(t, p, 25, "2") // atraviesa varios lotes: una sola operación

	m, err := f.dashboard.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.EntriesThisMonth)
	assert.Equal(t, "50", m.EntriesVariationPct.String())
	assert.Equal(t, int64(1), m.ExitsThisMonth)
	assert.True(t, m.ExitsVariationPct.IsZero())

	cards, err := f.dashboard.MetricsDTO(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cards.EntradasMes.Variacao)
	assert.InDelta(t, 50.0, *cards.EntradasMes.Variacao, 0.001)
	assert.Equal(t, "Entradas do Mês", cards.EntradasMes.Label)
	assert.Equal(t, analytics.StatusNormal, cards.ProdutosEstoqueBaixo.Status)
	assert.Nil(t, cards.TotalProdutos.Variacao)
}

// ──────────────────────────────────────────────────────────────────────────────
// Caché
// ──────────────────────────────────────────────────────────────────────────────

func TestMetrics_CacheSeInvalidaConEventos(t *testing.T) {
	f := newFixture(t, time.Hour, true)
	ctx := context.Background()
	p := f.product(t, "Luvas", 1)
	f.receive(t, p, 10, nil)

	m, err := f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), m.TotalItems)

	_, err = f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.recorder.hits)

	f.exit(t, p, 3, "1")
	m, err = f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.TotalItems, "después de una mutación nunca se devuelve el valor anterior")
	assert.Equal(t, 2, f.recorder.misses)
}

func TestMetrics_CacheSinSuscripcionExpiraPorTTLYDia(t *testing.T) {
	f := newFixture(t, time.Minute, false)
	ctx := context.Background()
	p := f.product(t, "Seringa", 1)
	f.receive(t, p, 10, nil)

	m, err := f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(10), m.TotalItems)

	f.receive(t, p, 5, nil)
	m, err = f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), m.TotalItems, "sin eventos la caché sigue vigente dentro del TTL")

	f.dashboard.Invalidate()
	m, err = f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15), m.TotalItems)

	f.receive(t, p, 1, nil)
	f.now = f.now.Add(2 * time.Minute)
	m, err = f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(16), m.TotalItems, "TTL vencido")

	f.receive(t, p, 1, nil)
	f.now = time.Date(2026, time.May, 15, 23, 59, 50, 0, time.UTC)
	_, err = f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	f.receive(t, p, 1, nil)
	f.now = f.now.Add(30 * time.Second)
	m, err = f.dashboard.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(18), m.TotalItems, "cambio de día dentro del TTL")
}

// ──────────────────────────────────────────────────────────────────────────────
// Gráficos y alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestCharts_SeisMesesYDistribucion(t *testing.T) {
	f := newFixture(t, 0, false)
	p := f.product(t, "Dipirona", 1)

	f.now = time.Date(2025, time.November, 20, 9, 0, 0, 0, time.UTC)
	f.receive(t, p, 500, nil) // fuera de la ventana
	f.now = time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	f.receive(t, p, 100, nil)
	f.now = time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	f.exit(t, p, 30, "3")
	f.now = time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC)
	f.exit(t, p, 5, "1")

	charts, err := f.dashboard.Charts(context.Background())
	require.NoError(t, err)
	require.Len(t, charts.Movimentacoes, analytics.ChartMonths)
	assert.Equal(t, "Dez/2025", charts.Movimentacoes[0].Periodo)
	assert.Equal(t, "Mai/2026", charts.Movimentacoes[5].Periodo)
	assert.Equal(t, int64(100), charts.Movimentacoes[1].Entradas)
	assert.Equal(t, int64(30), charts.Movimentacoes[3].Saidas)
	assert.Equal(t, int64(5), charts.Movimentacoes[5].Saidas)

	require.Len(t, charts.DistribuicaoLocais, len(entity.DefaultLocations()))
	byID := map[string]int64{}
	for _, d := range charts.DistribuicaoLocais {
		byID[d.LocalID] = d.Quantidade
	}
	assert.Equal(t, int64(30), byID["3"])
	assert.Equal(t, int64(5), byID["1"])
	assert.Equal(t, int64(0), byID["6"])
}

func TestAlerts_PrioridadAltaPrimero(t *testing.T) {
	f := newFixture(t, 0, false)
	vazio := f.product(t, "Atadura", 5)
	vacina := f.product(t, "Vacina", 1)
	vencido := f.receive(t, vacina, 10, daysFrom(f.now, -2))
	proximo := f.receive(t, vacina, 10, daysFrom(f.now, 20))
	f.receive(t, vacina, 10, daysFrom(f.now, 90))

	alerts, err := f.dashboard.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	assert.Equal(t, analytics.PriorityHigh, alerts[0].Prioridade)
	assert.Equal(t, analytics.PriorityHigh, alerts[1].Prioridade)
	assert.Equal(t, analytics.PriorityMedium, alerts[2].Prioridade)

	byType := map[string]dto.AlertDTO{}
	for _, a := range alerts {
		byType[a.Tipo] = a
	}
	assert.Equal(t, vazio, byType[analytics.AlertLowStock].ProdutoID)
	assert.Equal(t, vencido, byType[analytics.AlertExpired].LoteID)
	assert.Equal(t, proximo, byType[analytics.AlertNearExpiry].LoteID)
	assert.Contains(t, byType[analytics.AlertNearExpiry].Descricao, "20 dias")
}
