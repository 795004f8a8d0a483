package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/ports"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// Nombres de operación para métricas y logs.
const (
	OpReceive      = "receive_stock"
	OpAllocate     = "allocate_exit"
	OpAutoAllocate = "auto_allocate_exit"
)

// Options parámetros opcionales del libro de lotes.
type Options struct {
	OperationTimeout time.Duration // por defecto 5s
	NearExpiryDays   int
	Metrics          ports.LedgerMetrics
	Events           ports.EventPublisher
	Logger           *logger.Logger
	Now              func() time.Time
}

// LedgerUseCase registra entradas (lotes) y salidas contra lotes concretos o en modo automático
// (earliest-expiry-first). Cada mutación bloquea los lotes afectados (SELECT FOR UPDATE o lock en memoria)
// y escribe su movimiento en la misma transacción.
type LedgerUseCase struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	locations repository.LocationRepository
	lots      repository.LotRepository
	movements repository.MovementRepository

	timeout time.Duration
	metrics ports.LedgerMetrics
	events  ports.EventPublisher
	log     *logger.Logger
	now     func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	locations repository.LocationRepository,
	lots repository.LotRepository,
	movements repository.MovementRepository,
	opts Options,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txRunner:  txRunner,
		products:  products,
		suppliers: suppliers,
		locations: locations,
		lots:      lots,
		movements: movements,
		timeout:   opts.OperationTimeout,
		metrics:   opts.Metrics,
		events:    opts.Events,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if uc.timeout <= 0 {
		uc.timeout = 5 * time.Second
	}
	if uc.metrics == nil {
		uc.metrics = ports.NopMetrics{}
	}
	if uc.events == nil {
		uc.events = ports.NopPublisher{}
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	uc.log = uc.log.Component("ledger")
	return uc
}

// ReceiveInput datos de una entrada de stock.
type ReceiveInput struct {
	ProductID     string
	SupplierID    string
	Quantity      int64
	LotCode       string // vacío = se genera
	ExpiresAt     *time.Time
	InvoiceNumber string
}

// ExitInput datos de una salida. Sin LotID la salida se asigna automáticamente entre los lotes del producto.
type ExitInput struct {
	ProductID  string
	LotID      string
	Quantity   int64
	LocationID string
	Requester  string
	Notes      string
}

// ReceiveStock crea un lote con restante = recibido y su movimiento de entrada en la misma transacción.
func (uc *LedgerUseCase) ReceiveStock(ctx context.Context, in ReceiveInput) (resp *dto.EntryResponse, err error) {
	start := time.Now()
	defer func() { uc.observe(OpReceive, start, err) }()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantidade", fmt.Sprint(in.Quantity), "deve ser maior que zero")
	}
	product, err := uc.activeProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	var supplier *entity.Supplier
	if in.SupplierID != "" {
		supplier, err = uc.suppliers.GetByID(ctx, in.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil || supplier.IsDeleted() {
			return nil, domain.NotFound("fornecedor_id", in.SupplierID)
		}
	}

	now := uc.now().UTC()
	code := strings.TrimSpace(in.LotCode)
	if code == "" {
		code = inventory.GenerateLotCode(now)
	}
	lot := &entity.Lot{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		SupplierID:    in.SupplierID,
		Code:          code,
		Received:      in.Quantity,
		Remaining:     in.Quantity,
		ExpiresAt:     inventory.DateOnly(in.ExpiresAt),
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		ReceivedAt:    now,
	}
	mov := &entity.Movement{
		ID:            uuid.New().String(),
		TransactionID: uuid.New().String(),
		Kind:          entity.MovementKindEntry,
		ProductID:     product.ID,
		LotID:         lot.ID,
		Quantity:      in.Quantity,
		OccurredAt:    now,
		SupplierID:    in.SupplierID,
		InvoiceNumber: lot.InvoiceNumber,
	}

	// La unicidad del código por producto la garantiza el almacenamiento al confirmar (índice único
	// en PostgreSQL, índice por producto en memoria) y llega como Conflict.
	err = uc.txRunner.Run(ctx, func(lots repository.LotRepository, movements repository.MovementRepository) error {
		if err := lots.Create(ctx, lot); err != nil {
			return err
		}
		return movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, mapTimeout(err)
	}

	uc.events.Publish(ctx, entity.Event{Type: entity.EventStockReceived, Entity: "lote", EntityID: lot.ID, At: now})
	uc.log.Info().Str("produto_id", product.ID).Str("lote", code).Int64("quantidade", in.Quantity).Msg("entrada registrada")

	names := uc.responseNames(ctx)
	names.products[product.ID] = product.Name
	names.lots[lot.ID] = lot.Code
	if supplier != nil {
		names.suppliers[supplier.ID] = supplier.Name
	}
	today := dateOf(now)
	return &dto.EntryResponse{
		Lote:         toLotResponse(lot, today),
		Movimentacao: names.movement(mov),
	}, nil
}

// RegisterExit despacha a AllocateExit (lote informado) o AutoAllocateExit (sin lote).
func (uc *LedgerUseCase) RegisterExit(ctx context.Context, in ExitInput) (*dto.ExitResponse, error) {
	if strings.TrimSpace(in.LotID) == "" {
		return uc.AutoAllocateExit(ctx, in)
	}
	return uc.AllocateExit(ctx, in)
}

// AllocateExit descuenta quantity del lote indicado: bloquea el lote, verifica restante >= quantity,
// decrementa y registra el movimiento de salida. Si no alcanza devuelve InsufficientStock sin mutar nada.
func (uc *LedgerUseCase) AllocateExit(ctx context.Context, in ExitInput) (resp *dto.ExitResponse, err error) {
	start := time.Now()
	defer func() { uc.observe(OpAllocate, start, err) }()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	location, err := uc.validateExit(ctx, in)
	if err != nil {
		return nil, err
	}
	lotID := strings.TrimSpace(in.LotID)
	now := uc.now().UTC()
	txID := uuid.New().String()
	var (
		product *entity.Product
		touched *entity.Lot
		mov     *entity.Movement
	)

	err = uc.txRunner.Run(ctx, func(lots repository.LotRepository, movements repository.MovementRepository) error {
		lot, err := lots.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.NotFound("lote_id", lotID)
		}
		if in.ProductID != "" && lot.ProductID != in.ProductID {
			return domain.Invalid("lote_id", lotID, "lote não pertence ao produto informado")
		}
		product, err = uc.activeProduct(ctx, lot.ProductID)
		if err != nil {
			return err
		}
		if lot.Remaining < in.Quantity {
			return &domain.InsufficientStockError{Subject: "lote " + lot.Code, Available: lot.Remaining, Requested: in.Quantity}
		}
		if err := lots.UpdateRemaining(ctx, lot.ID, lot.Remaining-in.Quantity); err != nil {
			return err
		}
		lot.Remaining -= in.Quantity
		touched = lot
		mov = uc.exitMovement(txID, lot, in, location.ID, now)
		return movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, mapTimeout(err)
	}

	uc.events.Publish(ctx, entity.Event{Type: entity.EventStockIssued, Entity: "lote", EntityID: touched.ID, At: now})
	uc.log.Info().Str("lote_id", touched.ID).Int64("quantidade", in.Quantity).Str("local", location.Name).Msg("saída registrada")

	names := uc.responseNames(ctx)
	names.products[product.ID] = product.Name
	names.lots[touched.ID] = touched.Code
	return &dto.ExitResponse{
		TransacaoID:     txID,
		QuantidadeTotal: in.Quantity,
		Movimentacoes:   []dto.MovementResponse{names.movement(mov)},
	}, nil
}

// AutoAllocateExit bloquea todos los lotes con saldo del producto en orden ascendente de ID,
// reparte la cantidad en orden canónico (validade más próxima primero) y registra un movimiento
// por lote tocado, todos con el mismo transaction_id. Todo o nada.
func (uc *LedgerUseCase) AutoAllocateExit(ctx context.Context, in ExitInput) (resp *dto.ExitResponse, err error) {
	start := time.Now()
	defer func() { uc.observe(OpAutoAllocate, start, err) }()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if strings.TrimSpace(in.ProductID) == "" {
		return nil, domain.Invalid("produto_id", "", "obrigatório quando lote_id não é informado")
	}
	location, err := uc.validateExit(ctx, in)
	if err != nil {
		return nil, err
	}
	product, err := uc.activeProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	txID := uuid.New().String()
	var (
		created []*entity.Movement
		touched []*entity.Lot
	)
	err = uc.txRunner.Run(ctx, func(lots repository.LotRepository, movements repository.MovementRepository) error {
		available, err := lots.ListAvailableForUpdate(ctx, product.ID)
		if err != nil {
			return err
		}
		plan, err := inventory.PlanAllocation(available, in.Quantity)
		if err != nil {
			return err
		}
		for _, a := range plan {
			if err := lots.UpdateRemaining(ctx, a.Lot.ID, a.Lot.Remaining-a.Quantity); err != nil {
				return err
			}
			part := in
			part.Quantity = a.Quantity
			mov := uc.exitMovement(txID, a.Lot, part, location.ID, now)
			if err := movements.Create(ctx, mov); err != nil {
				return err
			}
			created = append(created, mov)
			touched = append(touched, a.Lot)
		}
		return nil
	})
	if err != nil {
		return nil, mapTimeout(err)
	}

	for _, l := range touched {
		uc.events.Publish(ctx, entity.Event{Type: entity.EventStockIssued, Entity: "lote", EntityID: l.ID, At: now})
	}
	uc.log.Info().Str("produto_id", product.ID).Int64("quantidade", in.Quantity).Int("lotes", len(touched)).Msg("saída automática registrada")

	names := uc.responseNames(ctx)
	names.products[product.ID] = product.Name
	for _, l := range touched {
		names.lots[l.ID] = l.Code
	}
	out := &dto.ExitResponse{TransacaoID: txID, QuantidadeTotal: in.Quantity}
	for _, m := range created {
		out.Movimentacoes = append(out.Movimentacoes, names.movement(m))
	}
	return out, nil
}

func (uc *LedgerUseCase) validateExit(ctx context.Context, in ExitInput) (*entity.Location, error) {
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantidade", fmt.Sprint(in.Quantity), "deve ser maior que zero")
	}
	if strings.TrimSpace(in.Requester) == "" {
		return nil, domain.Invalid("solicitante", "", "obrigatório")
	}
	if strings.TrimSpace(in.LocationID) == "" {
		return nil, domain.Invalid("local_destino_id", "", "obrigatório")
	}
	location, err := uc.locations.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.NotFound("local_destino_id", in.LocationID)
	}
	return location, nil
}

func (uc *LedgerUseCase) activeProduct(ctx context.Context, id string) (*entity.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("produto_id", "", "obrigatório")
	}
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.IsDeleted() {
		return nil, domain.NotFound("produto_id", id)
	}
	return p, nil
}

func (uc *LedgerUseCase) exitMovement(txID string, lot *entity.Lot, in ExitInput, locationID string, now time.Time) *entity.Movement {
	return &entity.Movement{
		ID:            uuid.New().String(),
		TransactionID: txID,
		Kind:          entity.MovementKindExit,
		ProductID:     lot.ProductID,
		LotID:         lot.ID,
		Quantity:      in.Quantity,
		OccurredAt:    now,
		LocationID:    locationID,
		Requester:     strings.TrimSpace(in.Requester),
		Notes:         strings.TrimSpace(in.Notes),
	}
}

func (uc *LedgerUseCase) observe(op string, start time.Time, err error) {
	outcome := ports.OutcomeOK
	switch {
	case err == nil:
	case isBusinessError(err):
		outcome = ports.OutcomeRejected
	default:
		outcome = ports.OutcomeError
		uc.log.Error().Err(err).Str("operation", op).Msg("falha inesperada no livro de lotes")
	}
	uc.metrics.ObserveOperation(op, outcome, time.Since(start))
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrConflict,
		domain.ErrInsufficientStock, domain.ErrLockTimeout,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mapTimeout traduce un vencimiento del contexto durante la transacción en ErrLockTimeout.
func mapTimeout(err error) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrLockTimeout) {
		return fmt.Errorf("%w: %v", domain.ErrLockTimeout, err)
	}
	return err
}
