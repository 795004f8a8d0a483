//go:build integration

package postgres_test

// Ejecutar con: go test -tags integration ./internal/infrastructure/postgres/... -v

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-api/pkg/config"
)

// ── Setup ────────────────────────────────────────────────────────────────────

type pgEnv struct {
	pool     *pgxpool.Pool
	ledger   *inventory.LedgerUseCase
	products *usecase.ProductUseCase
}

func setupPostgres(t *testing.T) *pgEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("estoque_test"),
		tcPostgres.WithUsername("estoque"),
		tcPostgres.WithPassword("estoque"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 16})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	lots := postgres.NewLotRepository(pool)
	movs := postgres.NewMovementRepository(pool)
	return &pgEnv{
		pool: pool,
		ledger: inventory.NewLedgerUseCase(
			postgres.NewTxRunner(pool),
			postgres.NewProductRepository(pool),
			postgres.NewSupplierRepository(pool),
			postgres.NewLocationRepository(pool),
			lots, movs,
			inventory.Options{OperationTimeout: 5 * time.Second},
		),
		products: usecase.NewProductUseCase(postgres.NewProductRepository(pool), lots, movs, nil),
	}
}

func (e *pgEnv) product(t *testing.T, name string) string {
	t.Helper()
	p, err := e.products.Create(context.Background(), dto.CreateProductRequest{Nome: name})
	require.NoError(t, err)
	return p.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestPostgres_MigracionSiembraDestinos(t *testing.T) {
	env := setupPostgres(t)
	ctx := context.Background()

	locs, err := postgres.NewLocationRepository(env.pool).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultLocations(), locs)

	byName, err := postgres.NewLocationRepository(env.pool).GetByName(ctx, "farmácia")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "1", byName.ID)

	// Migrar dos veces no falla.
	require.NoError(t, postgres.Migrate(ctx, env.pool))
}

func TestPostgres_NombreDeProductoUnicoSinMayusculas(t *testing.T) {
	env := setupPostgres(t)
	env.product(t, "Dipirona 500mg")

	_, err := env.products.Create(context.Background(), dto.CreateProductRequest{Nome: "DIPIRONA 500MG"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPostgres_EntradaSalidaYConsulta(t *testing.T) {
	env := setupPostgres(t)
	ctx := context.Background()
	p := env.product(t, "Amoxicilina")

	exp := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	entry, err := env.ledger.ReceiveStock(ctx, inventory.ReceiveInput{ProductID: p, Quantity: 20, LotCode: "AMX-1", ExpiresAt: &exp})
	require.NoError(t, err)
	_, err = env.ledger.ReceiveStock(ctx, inventory.ReceiveInput{ProductID: p, Quantity: 5, LotCode: "amx-1"})
	assert.ErrorIs(t, err, domain.ErrConflict, "código de lote único por producto")

	out, err := env.ledger.RegisterExit(ctx, inventory.ExitInput{ProductID: p, Quantity: 8, LocationID: "3", Requester: "Dr. Paulo"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), out.QuantidadeTotal)

	_, err = env.ledger.AllocateExit(ctx, inventory.ExitInput{LotID: entry.Lote.ID, Quantity: 13, LocationID: "1"})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(12), ise.Available)

	stock, err := env.ledger.CurrentStock(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stock)

	movs, err := env.ledger.QueryMovements(ctx, inventory.MovementQuery{RequesterContains: "paulo"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "saida", movs[0].Tipo)
	assert.Equal(t, "Centro Cirúrgico", movs[0].LocalDestino)
}

func TestPostgres_SalidasConcurrentesSinSobreasignacion(t *testing.T) {
	env := setupPostgres(t)
	ctx := context.Background()
	p := env.product(t, "Heparina")
	for _, code := range []string{"H1", "H2", "H3"} {
		_, err := env.ledger.ReceiveStock(ctx, inventory.ReceiveInput{ProductID: p, Quantity: 10, LotCode: code})
		require.NoError(t, err)
	}

	const workers = 20
	var ok atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ledger.AutoAllocateExit(ctx, inventory.ExitInput{ProductID: p, Quantity: 2, LocationID: "1"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrLockTimeout):
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	stock, err := env.ledger.CurrentStock(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 30-2*ok.Load(), stock)
	assert.GreaterOrEqual(t, stock, int64(0))

	exits, err := env.ledger.QueryMovements(ctx, inventory.MovementQuery{Kind: entity.MovementKindExit})
	require.NoError(t, err)
	var total int64
	for _, m := range exits {
		total += m.Quantidade
	}
	assert.Equal(t, 2*ok.Load(), total)
}
