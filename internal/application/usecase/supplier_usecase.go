package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/ports"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/validator"
)

// SupplierUseCase casos de uso CRUD para proveedores.
type SupplierUseCase struct {
	repo   repository.SupplierRepository
	lots   repository.LotRepository
	events ports.EventPublisher
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, lots repository.LotRepository, events ports.EventPublisher) *SupplierUseCase {
	if events == nil {
		events = ports.NopPublisher{}
	}
	return &SupplierUseCase{repo: repo, lots: lots, events: events}
}

// Create crea un proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := normalizeName(in.Nome)
	if name == "" {
		return nil, domain.Invalid("nome", "", "obrigatório")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	s := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      name,
		Contact:   strings.TrimSpace(in.Contato),
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.publish(ctx, s.ID, now)
	return toSupplierResponse(s), nil
}

// FindOrCreate devuelve el proveedor activo con ese nombre o lo crea (alta ad hoc desde entradas e importación).
func (uc *SupplierUseCase) FindOrCreate(ctx context.Context, name string) (*dto.SupplierResponse, error) {
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toSupplierResponse(existing), nil
	}
	return uc.Create(ctx, dto.CreateSupplierRequest{Nome: name})
}

// GetByID obtiene un proveedor por ID.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("fornecedor_id", id)
	}
	return toSupplierResponse(s), nil
}

// Update aplica los campos informados.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.IsDeleted() {
		return nil, domain.NotFound("fornecedor_id", id)
	}
	if in.Nome != nil {
		name := normalizeName(*in.Nome)
		if name == "" {
			return nil, domain.Invalid("nome", "", "obrigatório")
		}
		s.Name = name
	}
	if in.Contato != nil {
		s.Contact = strings.TrimSpace(*in.Contato)
	}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
		s.Email = strings.TrimSpace(*in.Email)
	}
	s.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	uc.publish(ctx, s.ID, s.UpdatedAt)
	return toSupplierResponse(s), nil
}

// List lista proveedores activos ordenados por nombre.
func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	entity.SortSuppliersByName(list)
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return items, nil
}

// Delete borra el proveedor; si algún lote lo referencia devuelve Conflict salvo force (baja lógica).
func (uc *SupplierUseCase) Delete(ctx context.Context, id string, force bool) (*dto.DeleteResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.IsDeleted() {
		return nil, domain.NotFound("fornecedor_id", id)
	}
	referenced, err := uc.lots.ExistsBySupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if referenced {
		if !force {
			return nil, domain.Conflict("fornecedor_id", id, "fornecedor possui lotes recebidos; use force=true para desativar")
		}
		if err := uc.repo.SoftDelete(ctx, id, now); err != nil {
			return nil, err
		}
		uc.publish(ctx, id, now)
		return &dto.DeleteResponse{ID: id, Modo: DeleteModeDeactivated, Message: "Fornecedor desativado"}, nil
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	uc.publish(ctx, id, now)
	return &dto.DeleteResponse{ID: id, Modo: DeleteModeRemoved, Message: "Fornecedor removido"}, nil
}

func (uc *SupplierUseCase) publish(ctx context.Context, id string, at time.Time) {
	uc.events.Publish(ctx, entity.Event{Type: entity.EventCatalogChanged, Entity: "fornecedor", EntityID: id, At: at})
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !validator.IsEmail(email) {
		return domain.Invalid("email", email, "e-mail inválido")
	}
	return nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:           s.ID,
		Nome:         s.Name,
		Contato:      s.Contact,
		Email:        s.Email,
		CriadoEm:     s.CreatedAt,
		AtualizadoEm: s.UpdatedAt,
		ExcluidoEm:   s.DeletedAt,
	}
}
