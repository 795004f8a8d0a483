package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/ports"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// Modos de borrado devueltos al cliente.
const (
	DeleteModeRemoved     = "removido"
	DeleteModeDeactivated = "desativado"
)

// ProductUseCase casos de uso CRUD para productos. El stock no se toca aquí: vive en los lotes.
type ProductUseCase struct {
	repo      repository.ProductRepository
	lots      repository.LotRepository
	movements repository.MovementRepository
	events    ports.EventPublisher
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	lots repository.LotRepository,
	movements repository.MovementRepository,
	events ports.EventPublisher,
) *ProductUseCase {
	if events == nil {
		events = ports.NopPublisher{}
	}
	return &ProductUseCase{repo: repo, lots: lots, movements: movements, events: events}
}

// Create crea un nuevo producto. estoque_minimo por defecto 10.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := normalizeName(in.Nome)
	if name == "" {
		return nil, domain.Invalid("nome", "", "obrigatório")
	}
	minimum := entity.DefaultMinimumStock
	if in.EstoqueMinimo != nil {
		minimum = int64(*in.EstoqueMinimo)
	}
	if err := validateMinimum(minimum); err != nil {
		return nil, err
	}
	if err := validatePrice(in.PrecoUnitario); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         name,
		Category:     entity.CanonicalCategory(in.Categoria),
		MinimumStock: minimum,
		Description:  strings.TrimSpace(in.Descricao),
		UnitPrice:    in.PrecoUnitario,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.publish(ctx, product.ID, now)
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID (incluye dados de baja lógica).
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("produto_id", id)
	}
	return toProductResponse(product), nil
}

// Resolve busca un producto activo por ID o, si no existe, por nombre (importación de planillas).
func (uc *ProductUseCase) Resolve(ctx context.Context, idOrName string) (*dto.ProductResponse, error) {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return nil, domain.Invalid("produto", "", "obrigatório")
	}
	product, err := uc.repo.GetByID(ctx, key)
	if err != nil {
		return nil, err
	}
	if product == nil {
		if product, err = uc.repo.GetByName(ctx, normalizeName(key)); err != nil {
			return nil, err
		}
	}
	if product == nil || product.IsDeleted() {
		return nil, domain.NotFound("produto", key)
	}
	return toProductResponse(product), nil
}

// Update aplica los campos informados y devuelve el producto materializado.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.IsDeleted() {
		return nil, domain.NotFound("produto_id", id)
	}
	if in.Nome != nil {
		name := normalizeName(*in.Nome)
		if name == "" {
			return nil, domain.Invalid("nome", "", "obrigatório")
		}
		product.Name = name
	}
	if in.Categoria != nil {
		product.Category = entity.CanonicalCategory(*in.Categoria)
	}
	if in.EstoqueMinimo != nil {
		if err := validateMinimum(int64(*in.EstoqueMinimo)); err != nil {
			return nil, err
		}
		product.MinimumStock = int64(*in.EstoqueMinimo)
	}
	if in.Descricao != nil {
		product.Description = strings.TrimSpace(*in.Descricao)
	}
	if in.PrecoUnitario != nil {
		if err := validatePrice(in.PrecoUnitario); err != nil {
			return nil, err
		}
		product.UnitPrice = in.PrecoUnitario
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.publish(ctx, product.ID, product.UpdatedAt)
	return toProductResponse(product), nil
}

// List lista los productos activos ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	entity.SortProductsByName(list)
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

// Delete borra el producto. Si tiene lotes con saldo o historial devuelve Conflict,
// salvo force=true, que lo da de baja lógica conservando el historial.
func (uc *ProductUseCase) Delete(ctx context.Context, id string, force bool) (*dto.DeleteResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.IsDeleted() {
		return nil, domain.NotFound("produto_id", id)
	}
	stock, err := uc.lots.SumRemaining(ctx, id)
	if err != nil {
		return nil, err
	}
	hasHistory, err := uc.movements.ExistsForProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if stock > 0 || hasHistory {
		if !force {
			return nil, domain.Conflict("produto_id", id, "produto possui lotes com saldo ou histórico de movimentações; use force=true para desativar")
		}
		if err := uc.repo.SoftDelete(ctx, id, now); err != nil {
			return nil, err
		}
		uc.publish(ctx, id, now)
		return &dto.DeleteResponse{ID: id, Modo: DeleteModeDeactivated, Message: "Produto desativado"}, nil
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	uc.publish(ctx, id, now)
	return &dto.DeleteResponse{ID: id, Modo: DeleteModeRemoved, Message: "Produto removido"}, nil
}

func (uc *ProductUseCase) publish(ctx context.Context, id string, at time.Time) {
	uc.events.Publish(ctx, entity.Event{Type: entity.EventCatalogChanged, Entity: "produto", EntityID: id, At: at})
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func validateMinimum(v int64) error {
	if v < 1 {
		return domain.Invalid("estoque_minimo", "", "deve ser maior ou igual a 1")
	}
	return nil
}

func validatePrice(p *decimal.Decimal) error {
	if p != nil && p.IsNegative() {
		return domain.Invalid("preco_unitario", p.String(), "não pode ser negativo")
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Nome:          p.Name,
		Categoria:     p.Category,
		EstoqueMinimo: p.MinimumStock,
		Descricao:     p.Description,
		PrecoUnitario: p.UnitPrice,
		CriadoEm:      p.CreatedAt,
		AtualizadoEm:  p.UpdatedAt,
		ExcluidoEm:    p.DeletedAt,
	}
}
