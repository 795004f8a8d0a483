package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/ports"
	"github.com/jhoicas/estoque-api/internal/domain"
	domaininv "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// ProductCatalog alta y resolución de productos.
type ProductCatalog interface {
	Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	Resolve(ctx context.Context, idOrName string) (*dto.ProductResponse, error)
}

// SupplierCatalog alta de proveedores.
type SupplierCatalog interface {
	Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	FindOrCreate(ctx context.Context, name string) (*dto.SupplierResponse, error)
}

// LocationResolver resuelve destinos por ID o nombre.
type LocationResolver interface {
	Resolve(ctx context.Context, idOrName string) (*dto.LocationResponse, error)
}

// Ledger registra entradas y salidas.
type Ledger interface {
	ReceiveStock(ctx context.Context, in inventory.ReceiveInput) (*dto.EntryResponse, error)
	RegisterExit(ctx context.Context, in inventory.ExitInput) (*dto.ExitResponse, error)
}

// Options parámetros del pipeline.
type Options struct {
	UploadTTL         time.Duration
	MaxConcurrentJobs int
	PreviewRows       int
	Metrics           ports.LedgerMetrics
	Logger            *logger.Logger
	Now               func() time.Time
}

// ImportUseCase orquesta upload y procesamiento. Cada fila pasa por los mismos casos de uso
// que una llamada interactiva y es independiente de las demás.
type ImportUseCase struct {
	products  ProductCatalog
	suppliers SupplierCatalog
	locations LocationResolver
	ledger    Ledger

	uploads *UploadStore
	jobs    *semaphore.Weighted
	preview int
	metrics ports.LedgerMetrics
	log     *logger.Logger
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(products ProductCatalog, suppliers SupplierCatalog, locations LocationResolver, ledger Ledger, opts Options) *ImportUseCase {
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = 4
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 5
	}
	if opts.Metrics == nil {
		opts.Metrics = ports.NopMetrics{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &ImportUseCase{
		products:  products,
		suppliers: suppliers,
		locations: locations,
		ledger:    ledger,
		uploads:   NewUploadStore(opts.UploadTTL, opts.Now),
		jobs:      semaphore.NewWeighted(int64(opts.MaxConcurrentJobs)),
		preview:   opts.PreviewRows,
		metrics:   opts.Metrics,
		log:       opts.Logger.Component("importer"),
	}
}

// Upload parsea el archivo, lo guarda temporalmente y devuelve columnas y vista previa.
func (uc *ImportUseCase) Upload(ctx context.Context, filename, dataType string, data []byte) (*dto.UploadResponse, error) {
	fields, err := Fields(dataType)
	if err != nil {
		return nil, err
	}
	table, err := Parse(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	u := uc.uploads.Put(filepath.Base(filename), dataType, table)

	n := min(uc.preview, len(table.Rows))
	preview := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		row := make(map[string]string, len(table.Columns))
		for j, c := range table.Columns {
			row[c] = table.Rows[i].Value(j)
		}
		preview[i] = row
	}
	uc.log.Info().Str("upload_id", u.ID).Str("arquivo", u.OriginalName).Int("linhas", len(table.Rows)).Msg("upload recebido")

	return &dto.UploadResponse{
		Filename:          u.ID,
		NomeOriginal:      u.OriginalName,
		Colunas:           table.Columns,
		Preview:           preview,
		TotalLinhas:       len(table.Rows),
		CamposDisponiveis: fields,
		ExpiraEm:          u.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Process aplica un upload con el mapeo indicado. El upload se retira al empezar, así que una
// segunda llamada con el mismo ID recibe NotFound; un mapeo inválido lo devuelve intacto.
func (uc *ImportUseCase) Process(ctx context.Context, req dto.ProcessImportRequest) (*dto.ImportReportDTO, error) {
	id := strings.TrimSpace(req.UploadID)
	if id == "" && strings.TrimSpace(req.Filepath) != "" {
		// el cliente envía "/tmp/<filename>"
		id = filepath.Base(strings.TrimSpace(req.Filepath))
	}
	if id == "" {
		return nil, domain.Invalid("upload_id", "", "obrigatório")
	}
	upload, err := uc.uploads.Take(id)
	if err != nil {
		return nil, err
	}
	cm, err := resolveMapping(upload.Table, req.TipoDados, req.Mapeamento)
	if err != nil {
		uc.uploads.Restore(upload)
		return nil, err
	}

	if err := uc.jobs.Acquire(ctx, 1); err != nil {
		uc.uploads.Restore(upload)
		return nil, err
	}
	defer uc.jobs.Release(1)

	apply := uc.rowApplier(req.TipoDados)
	report := &dto.ImportReportDTO{DetalhesErros: []string{}, ErrosDetalhados: []dto.ImportRowErrorDTO{}}
	for _, row := range upload.Table.Rows {
		if err := ctx.Err(); err != nil {
			uc.finish(req.TipoDados, report)
			return report, err
		}
		report.TotalProcessado++
		if err := apply(ctx, cm, row); err != nil {
			uc.rowFailed(report, row.Line, err)
			continue
		}
		report.Importados++
	}
	uc.finish(req.TipoDados, report)
	uc.log.Info().Str("upload_id", id).Str("tipo_dados", req.TipoDados).
		Int("importados", report.Importados).Int("erros", report.Erros).Msg("importação concluída")
	return report, nil
}

func (uc *ImportUseCase) finish(dataType string, report *dto.ImportReportDTO) {
	uc.metrics.ObserveImport(dataType, report.Importados, report.Erros)
}

func (uc *ImportUseCase) rowFailed(report *dto.ImportReportDTO, line int, err error) {
	if !isRowError(err) {
		uc.log.Error().Err(err).Int("linha", line).Msg("erro inesperado na importação")
	}
	report.Erros++
	report.DetalhesErros = append(report.DetalhesErros, fmt.Sprintf("Linha %d: %s", line, err.Error()))
	report.ErrosDetalhados = append(report.ErrosDetalhados, dto.ImportRowErrorDTO{Linha: line, Mensagem: err.Error()})
}

func isRowError(err error) bool {
	for _, target := range []error{domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrConflict, domain.ErrInsufficientStock} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type applyFunc func(ctx context.Context, cm columnMap, row Row) error

func (uc *ImportUseCase) rowApplier(dataType string) applyFunc {
	switch dataType {
	case DataProducts:
		return uc.applyProduct
	case DataSuppliers:
		return uc.applySupplier
	case DataCurrentStock:
		return uc.applyCurrentStock
	case DataEntries:
		return uc.applyEntry
	default:
		return uc.applyExit
	}
}

func (uc *ImportUseCase) applyProduct(ctx context.Context, cm columnMap, row Row) error {
	in := dto.CreateProductRequest{
		Nome:      cm.get(row, FieldName),
		Categoria: cm.get(row, FieldCategory),
		Descricao: cm.get(row, FieldDescription),
	}
	if raw := cm.get(row, FieldMinimum); raw != "" {
		n, err := parseInteger(FieldMinimum, raw)
		if err != nil {
			return err
		}
		m := dto.FlexInt(n)
		in.EstoqueMinimo = &m
	}
	if raw := cm.get(row, FieldPrice); raw != "" {
		p, err := parseDecimal(FieldPrice, raw)
		if err != nil {
			return err
		}
		in.PrecoUnitario = &p
	}
	_, err := uc.products.Create(ctx, in)
	return err
}

func (uc *ImportUseCase) applySupplier(ctx context.Context, cm columnMap, row Row) error {
	_, err := uc.suppliers.Create(ctx, dto.CreateSupplierRequest{
		Nome:    cm.get(row, FieldName),
		Contato: cm.get(row, FieldContact),
		Email:   cm.get(row, FieldEmail),
	})
	return err
}

// applyCurrentStock carga stock existente como lote sin proveedor.
func (uc *ImportUseCase) applyCurrentStock(ctx context.Context, cm columnMap, row Row) error {
	in, err := uc.receiveInput(ctx, cm, row)
	if err != nil {
		return err
	}
	_, err = uc.ledger.ReceiveStock(ctx, *in)
	return err
}

func (uc *ImportUseCase) applyEntry(ctx context.Context, cm columnMap, row Row) error {
	in, err := uc.receiveInput(ctx, cm, row)
	if err != nil {
		return err
	}
	if name := cm.get(row, FieldSupplier); name != "" {
		s, err := uc.suppliers.FindOrCreate(ctx, name)
		if err != nil {
			return err
		}
		in.SupplierID = s.ID
	}
	in.InvoiceNumber = cm.get(row, FieldInvoice)
	_, err = uc.ledger.ReceiveStock(ctx, *in)
	return err
}

func (uc *ImportUseCase) receiveInput(ctx context.Context, cm columnMap, row Row) (*inventory.ReceiveInput, error) {
	qty, err := parseQuantity(cm.get(row, FieldQuantity))
	if err != nil {
		return nil, err
	}
	expires, err := domaininv.ParseDate(FieldExpiry, cm.get(row, FieldExpiry))
	if err != nil {
		return nil, err
	}
	product, err := uc.products.Resolve(ctx, cm.get(row, FieldProduct))
	if err != nil {
		return nil, err
	}
	return &inventory.ReceiveInput{
		ProductID: product.ID,
		Quantity:  qty,
		LotCode:   cm.get(row, FieldLot),
		ExpiresAt: expires,
	}, nil
}

// applyExit registra la salida con asignación automática entre los lotes del producto.
func (uc *ImportUseCase) applyExit(ctx context.Context, cm columnMap, row Row) error {
	qty, err := parseQuantity(cm.get(row, FieldQuantity))
	if err != nil {
		return err
	}
	product, err := uc.products.Resolve(ctx, cm.get(row, FieldProduct))
	if err != nil {
		return err
	}
	raw := cm.get(row, FieldLocation)
	if raw == "" {
		return domain.Invalid(FieldLocation, "", "obrigatório")
	}
	location, err := uc.locations.Resolve(ctx, raw)
	if err != nil {
		return err
	}
	_, err = uc.ledger.RegisterExit(ctx, inventory.ExitInput{
		ProductID:  product.ID,
		Quantity:   qty,
		LocationID: location.ID,
		Requester:  cm.get(row, FieldRequester),
		Notes:      cm.get(row, FieldNotes),
	})
	return err
}

// parseQuantity exige un entero positivo ("10", "10.0" y "10,0" se aceptan).
func parseQuantity(raw string) (int64, error) {
	if raw == "" {
		return 0, domain.Invalid(FieldQuantity, "", "obrigatório")
	}
	n, err := parseInteger(FieldQuantity, raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, domain.Invalid(FieldQuantity, raw, "deve ser maior que zero")
	}
	return n, nil
}

var (
	maxInteger = decimal.NewFromInt(math.MaxInt64)
	minInteger = decimal.NewFromInt(math.MinInt64)
)

func parseInteger(field, raw string) (int64, error) {
	d, err := parseDecimal(field, raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, domain.Invalid(field, raw, "deve ser um número inteiro")
	}
	if d.GreaterThan(maxInteger) || d.LessThan(minInteger) {
		return 0, domain.Invalid(field, raw, "número fora do intervalo permitido")
	}
	return d.IntPart(), nil
}

// parseDecimal acepta "12.5", "12,5", "1.234,56" y el prefijo "R$".
func parseDecimal(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.Invalid(field, raw, "número inválido")
	}
	return d, nil
}
