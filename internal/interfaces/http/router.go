package http

import (
	"net/http"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/estoque-api/internal/application/analytics"
	"github.com/jhoicas/estoque-api/internal/application/importer"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/report"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// ServerConfig parámetros del servidor Fiber.
type ServerConfig struct {
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimitMB  int
	SwaggerFile  string // vacío o inexistente = sin /docs
	CORSOrigins  string
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	SupplierUC  *usecase.SupplierUseCase
	LocationUC  *usecase.LocationUseCase
	Ledger      *inventory.LedgerUseCase
	DashboardUC *appanalytics.DashboardUseCase
	ImportUC    *importer.ImportUseCase
	ReportUC    *report.ReportUseCase
	Hub         *Hub         // nil = sin /ws/eventos
	Metrics     http.Handler // nil = sin /metrics
	Log         *logger.Logger
}

// NewApp construye la aplicación Fiber con middlewares, rutas de soporte y la API.
func NewApp(cfg ServerConfig, deps RouterDeps) *fiber.App {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	log := deps.Log.Component("http")
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 20
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(RequestLogger(log))
	app.Use(recover.New())
	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	}

	// Swagger UI: http://localhost:<port>/docs
	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    "Estoque API",
			}))
		} else {
			log.Warn().Str("arquivo", cfg.SwaggerFile).Msg("swagger não encontrado, /docs desativado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.StatusOK, fiber.Map{"status": "ok", "service": cfg.Name})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}
	if deps.Hub != nil {
		app.Use("/ws", deps.Hub.Upgrade())
		app.Get("/ws/eventos", deps.Hub.Handler())
	}

	Router(app, deps, log)
	return app
}

// Router registra las rutas de la API bajo /api.
func Router(app *fiber.App, deps RouterDeps, log *logger.Logger) {
	api := app.Group("/api")

	products := api.Group("/produtos")
	productHandler := NewProductHandler(deps.ProductUC, log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	suppliers := api.Group("/fornecedores")
	supplierHandler := NewSupplierHandler(deps.SupplierUC, log)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	locations := api.Group("/locais")
	locationHandler := NewLocationHandler(deps.LocationUC, log)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)

	stock := api.Group("/estoque")
	inventoryHandler := NewInventoryHandler(deps.Ledger, log)
	stock.Post("/entradas", inventoryHandler.RegisterEntry)
	stock.Post("/saidas", inventoryHandler.RegisterExit)
	stock.Get("/lotes/:produtoId", inventoryHandler.ListLots)
	stock.Get("/atual", inventoryHandler.CurrentStock)
	stock.Get("/movimentacoes", inventoryHandler.Movements)

	dashboard := api.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, log)
	dashboard.Get("/metricas", dashboardHandler.Metrics)
	dashboard.Get("/graficos", dashboardHandler.Charts)
	dashboard.Get("/graficos/movimentacoes", dashboardHandler.MonthlyMovements)
	dashboard.Get("/graficos/distribuicao-locais", dashboardHandler.LocationDistribution)
	dashboard.Get("/alertas", dashboardHandler.Alerts)

	imports := api.Group("/importacao")
	importHandler := NewImportHandler(deps.ImportUC, log)
	imports.Post("/upload", importHandler.Upload)
	imports.Post("/processar", importHandler.Process)
	imports.Get("/campos", importHandler.Fields)

	reports := api.Group("/relatorios")
	reportHandler := NewReportHandler(deps.ReportUC, log)
	reports.Get("/estoque.pdf", reportHandler.StockPDF)
	reports.Get("/movimentacoes.xlsx", reportHandler.MovementsXLSX)
}
