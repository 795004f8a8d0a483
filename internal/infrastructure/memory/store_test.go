package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, s *memory.Store, id string) {
	t.Helper()
	repo := memory.NewProductRepository(s)
	p, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	if p != nil {
		return
	}
	require.NoError(t, repo.Create(context.Background(), &entity.Product{ID: id, Name: "Produto " + id, MinimumStock: 1}))
}

func seedLot(t *testing.T, s *memory.Store, id, productID, code string, qty int64) {
	t.Helper()
	seedProduct(t, s, productID)
	err := memory.NewLotRepository(s).Create(context.Background(), &entity.Lot{
		ID: id, ProductID: productID, Code: code, Received: qty, Remaining: qty, ReceivedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestTxRunner_ErrorDescartaCambios(t *testing.T) {
	s := memory.NewStore(entity.DefaultLocations())
	seedLot(t, s, "lot-1", "p1", "A", 10)
	runner := memory.NewTxRunner(s)

	boom := errors.New("boom")
	err := runner.Run(context.Background(), func(lots repository.LotRepository, movs repository.MovementRepository) error {
		l, err := lots.GetForUpdate(context.Background(), "lot-1")
		require.NoError(t, err)
		require.NoError(t, lots.UpdateRemaining(context.Background(), l.ID, 3))
		require.NoError(t, movs.Create(context.Background(), &entity.Movement{ID: "m1", ProductID: "p1", Kind: entity.MovementKindExit}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	l, err := memory.NewLotRepository(s).GetByID(context.Background(), "lot-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), l.Remaining)
	exists, _ := memory.NewMovementRepository(s).ExistsForProduct(context.Background(), "p1")
	assert.False(t, exists)
}

func TestTxRunner_LockOcupadoVenceConErrLockTimeout(t *testing.T) {
	s := memory.NewStore(nil)
	seedLot(t, s, "lot-1", "p1", "A", 10)
	runner := memory.NewTxRunner(s)

	locked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = runner.Run(context.Background(), func(lots repository.LotRepository, _ repository.MovementRepository) error {
			_, err := lots.GetForUpdate(context.Background(), "lot-1")
			close(locked)
			<-done
			return err
		})
	}()
	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := runner.Run(ctx, func(lots repository.LotRepository, _ repository.MovementRepository) error {
		_, err := lots.GetForUpdate(ctx, "lot-1")
		return err
	})
	close(done)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
}

func TestTxRunner_CodigoDeLoteDuplicadoEnCommit(t *testing.T) {
	s := memory.NewStore(nil)
	seedLot(t, s, "lot-1", "p1", "abc-1", 10)

	err := memory.NewTxRunner(s).Run(context.Background(), func(lots repository.LotRepository, _ repository.MovementRepository) error {
		return lots.Create(context.Background(), &entity.Lot{ID: "lot-2", ProductID: "p1", Code: "ABC-1", Received: 1, Remaining: 1})
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Mismo código en otro producto es válido.
	seedProduct(t, s, "p2")
	err = memory.NewTxRunner(s).Run(context.Background(), func(lots repository.LotRepository, _ repository.MovementRepository) error {
		return lots.Create(context.Background(), &entity.Lot{ID: "lot-3", ProductID: "p2", Code: "ABC-1", Received: 1, Remaining: 1})
	})
	assert.NoError(t, err)
}

func TestTxRunner_RestanteFueraDeRangoNoSeConfirma(t *testing.T) {
	s := memory.NewStore(nil)
	seedLot(t, s, "lot-1", "p1", "A", 10)

	err := memory.NewTxRunner(s).Run(context.Background(), func(lots repository.LotRepository, _ repository.MovementRepository) error {
		return lots.UpdateRemaining(context.Background(), "lot-1", 11)
	})
	require.Error(t, err)
	sum, _ := memory.NewLotRepository(s).SumRemaining(context.Background(), "p1")
	assert.Equal(t, int64(10), sum)
}

func TestLotRepo_ListAvailableForUpdateFiltraAgotados(t *testing.T) {
	s := memory.NewStore(nil)
	seedLot(t, s, "b", "p1", "B", 5)
	seedLot(t, s, "a", "p1", "A", 5)
	seedLot(t, s, "c", "p2", "C", 5)
	require.NoError(t, memory.NewLotRepository(s).UpdateRemaining(context.Background(), "b", 0))

	err := memory.NewTxRunner(s).Run(context.Background(), func(lots repository.LotRepository, _ repository.MovementRepository) error {
		got, err := lots.ListAvailableForUpdate(context.Background(), "p1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestMovementRepo_QueryOrdenYFiltros(t *testing.T) {
	s := memory.NewStore(nil)
	repo := memory.NewMovementRepository(s)
	base := time.Date(2026, time.May, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()
	seedProduct(t, s, "p1")
	seedProduct(t, s, "p2")

	require.NoError(t, repo.Create(ctx, &entity.Movement{ID: "1", TransactionID: "t1", Kind: entity.MovementKindEntry, ProductID: "p1", OccurredAt: base}))
	require.NoError(t, repo.Create(ctx, &entity.Movement{ID: "2", TransactionID: "t2", Kind: entity.MovementKindExit, ProductID: "p1", Requester: "Dra. Ana", OccurredAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entity.Movement{ID: "3", TransactionID: "t2", Kind: entity.MovementKindExit, ProductID: "p2", Requester: "Dra. Ana", OccurredAt: base.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entity.Movement{ID: "4", TransactionID: "t3", Kind: entity.MovementKindExit, ProductID: "p2", Requester: "Bruno", OccurredAt: base.Add(2 * time.Hour)}))

	all, err := repo.Query(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"4", "3", "2", "1"}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	exits, _ := repo.Query(ctx, repository.MovementFilter{Kind: entity.MovementKindExit, RequesterContains: "ana"})
	assert.Len(t, exits, 2)

	none, _ := repo.Query(ctx, repository.MovementFilter{ProductIDs: []string{}})
	assert.Empty(t, none)

	to := base.Add(time.Hour)
	early, _ := repo.Query(ctx, repository.MovementFilter{To: &to})
	require.Len(t, early, 1)
	assert.Equal(t, "1", early[0].ID)

	paged, _ := repo.Query(ctx, repository.MovementFilter{Limit: 2, Offset: 1})
	require.Len(t, paged, 2)
	assert.Equal(t, "3", paged[0].ID)

	n, err := repo.CountByKind(ctx, entity.MovementKindExit, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "t2 cuenta una sola operación")
}

func TestProductRepo_NombreUnicoSinMayusculas(t *testing.T) {
	s := memory.NewStore(nil)
	repo := memory.NewProductRepository(s)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "1", Name: "Dipirona 500mg"}))
	err := repo.Create(ctx, &entity.Product{ID: "2", Name: "  DIPIRONA   500MG "})
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, repo.SoftDelete(ctx, "1", time.Now()))
	assert.NoError(t, repo.Create(ctx, &entity.Product{ID: "2", Name: "Dipirona 500mg"}), "nombre liberado tras baja lógica")

	p, err := repo.GetByName(ctx, "dipirona 500MG")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "2", p.ID)
}

func TestTxRunner_RechazaLoteDeProductoBorrado(t *testing.T) {
	s := memory.NewStore(nil)
	seedProduct(t, s, "p1")
	ctx := context.Background()
	runner := memory.NewTxRunner(s)

	// El producto desaparece entre la validación del caso de uso y el commit.
	err := runner.Run(ctx, func(lots repository.LotRepository, movs repository.MovementRepository) error {
		require.NoError(t, memory.NewProductRepository(s).Delete(ctx, "p1"))
		require.NoError(t, lots.Create(ctx, &entity.Lot{ID: "lot-1", ProductID: "p1", Code: "A", Received: 5, Remaining: 5}))
		return movs.Create(ctx, &entity.Movement{ID: "m1", ProductID: "p1", LotID: "lot-1", Kind: entity.MovementKindEntry, Quantity: 5})
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	l, err := memory.NewLotRepository(s).GetByID(ctx, "lot-1")
	require.NoError(t, err)
	assert.Nil(t, l)
	exists, err := memory.NewMovementRepository(s).ExistsForProduct(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, exists)

	err = memory.NewMovementRepository(s).Create(ctx, &entity.Movement{ID: "m2", ProductID: "p1", Kind: entity.MovementKindExit})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTxRunner_RechazaLoteDeProductoDesativado(t *testing.T) {
	s := memory.NewStore(nil)
	seedProduct(t, s, "p1")
	ctx := context.Background()
	require.NoError(t, memory.NewProductRepository(s).SoftDelete(ctx, "p1", time.Now()))

	err := memory.NewLotRepository(s).Create(ctx, &entity.Lot{ID: "lot-1", ProductID: "p1", Code: "A", Received: 5, Remaining: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogRepo_DeleteConReferenciasEsConflict(t *testing.T) {
	s := memory.NewStore(nil)
	ctx := context.Background()
	suppliers := memory.NewSupplierRepository(s)
	require.NoError(t, suppliers.Create(ctx, &entity.Supplier{ID: "f1", Name: "VetFarma"}))
	seedProduct(t, s, "p1")
	require.NoError(t, memory.NewLotRepository(s).Create(ctx, &entity.Lot{
		ID: "lot-1", ProductID: "p1", SupplierID: "f1", Code: "A", Received: 5, Remaining: 5,
	}))

	assert.ErrorIs(t, memory.NewProductRepository(s).Delete(ctx, "p1"), domain.ErrConflict)
	assert.ErrorIs(t, suppliers.Delete(ctx, "f1"), domain.ErrConflict)

	p, err := memory.NewProductRepository(s).GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestTxRunner_CodigoDeLoteIndexadoTrasCommit(t *testing.T) {
	s := memory.NewStore(nil)
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		seedLot(t, s, fmt.Sprintf("lot-%d", i), "p1", fmt.Sprintf("L-%03d", i), 1)
	}

	err := memory.NewLotRepository(s).Create(ctx, &entity.Lot{ID: "dup", ProductID: "p1", Code: "l-150", Received: 1, Remaining: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Dos lotes nuevos con el mismo código en la misma unidad de trabajo.
	err = memory.NewTxRunner(s).Run(ctx, func(lots repository.LotRepository, _ repository.MovementRepository) error {
		require.NoError(t, lots.Create(ctx, &entity.Lot{ID: "x1", ProductID: "p1", Code: "NOVO", Received: 1, Remaining: 1}))
		return lots.Create(ctx, &entity.Lot{ID: "x2", ProductID: "p1", Code: "novo", Received: 1, Remaining: 1})
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	sum, err := memory.NewLotRepository(s).SumRemaining(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), sum)
}
