package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	appanalytics "github.com/jhoicas/estoque-api/internal/application/analytics"
	"github.com/jhoicas/estoque-api/internal/application/importer"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/report"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/events"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/estoque-api/internal/infrastructure/pdf"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/estoque-api/internal/interfaces/http"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// storage agrupa los adaptadores de persistencia elegidos por STORAGE_DRIVER.
type storage struct {
	txRunner  inventory.TxRunner
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	locations repository.LocationRepository
	lots      repository.LotRepository
	movements repository.MovementRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	bus := events.NewBus(log)
	prom := metrics.NewPrometheus()

	productUC := usecase.NewProductUseCase(store.products, store.lots, store.movements, bus)
	supplierUC := usecase.NewSupplierUseCase(store.suppliers, store.lots, bus)
	locationUC := usecase.NewLocationUseCase(store.locations)
	ledger := inventory.NewLedgerUseCase(
		store.txRunner, store.products, store.suppliers, store.locations, store.lots, store.movements,
		inventory.Options{
			OperationTimeout: cfg.Ledger.OperationTimeout,
			NearExpiryDays:   cfg.Ledger.NearExpiryDays,
			Metrics:          prom,
			Events:           bus,
			Logger:           log,
		},
	)
	dashboardUC := appanalytics.NewDashboardUseCase(
		store.products, store.lots, store.movements, store.locations, bus,
		appanalytics.Options{
			NearExpiryDays: cfg.Ledger.NearExpiryDays,
			CacheTTL:       cfg.Metrics.CacheTTL,
			Metrics:        prom,
		},
	)
	importUC := importer.NewImportUseCase(productUC, supplierUC, locationUC, ledger, importer.Options{
		UploadTTL:         cfg.Import.UploadTTL,
		MaxConcurrentJobs: cfg.Import.MaxConcurrentJobs,
		PreviewRows:       cfg.Import.PreviewRows,
		Metrics:           prom,
		Logger:            log,
	})
	reportUC := report.NewReportUseCase(ledger, store.products, infrapdf.NewMarotoStockReport(), nil)

	hub := httpRouter.NewHub(log)
	unsubscribe := hub.Attach(bus)
	defer unsubscribe()

	deps := httpRouter.RouterDeps{
		ProductUC:   productUC,
		SupplierUC:  supplierUC,
		LocationUC:  locationUC,
		Ledger:      ledger,
		DashboardUC: dashboardUC,
		ImportUC:    importUC,
		ReportUC:    reportUC,
		Hub:         hub,
		Log:         log,
	}
	if cfg.Metrics.ExposeMetrics {
		deps.Metrics = prom.Handler()
	}
	app := httpRouter.NewApp(httpRouter.ServerConfig{
		Name:         cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		BodyLimitMB:  cfg.HTTP.BodyLimitMB,
		SwaggerFile:  cfg.HTTP.SwaggerFile,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
	}, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (con migraciones) o el almacenamiento en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore(entity.DefaultLocations())
		return &storage{
			txRunner:  memory.NewTxRunner(s),
			products:  memory.NewProductRepository(s),
			suppliers: memory.NewSupplierRepository(s),
			locations: memory.NewLocationRepository(s),
			lots:      memory.NewLotRepository(s),
			movements: memory.NewMovementRepository(s),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.RunMigrations {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		suppliers: postgres.NewSupplierRepository(pool),
		locations: postgres.NewLocationRepository(pool),
		lots:      postgres.NewLotRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		close:     pool.Close,
	}, nil
}
