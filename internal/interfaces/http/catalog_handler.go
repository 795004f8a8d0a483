package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

const invalidBodyMessage = "corpo da requisição inválido"

// parseBody decodifica el JSON y valida el DTO. El error devuelto ya está escrito en la respuesta.
func parseBody(c *fiber.Ctx, log *logger.Logger, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, fail(c, fiber.StatusBadRequest, invalidBodyMessage)
	}
	if err := validateStruct(out); err != nil {
		return false, respondError(c, log, err)
	}
	return true, nil
}

// ── Produtos ─────────────────────────────────────────────────────────────────

// ProductHandler maneja las peticiones HTTP del catálogo de productos.
type ProductHandler struct {
	uc  *usecase.ProductUseCase
	log *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Cadastrar produto
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Dados do produto"
// @Success      201   {object}  dto.SuccessResponse{data=dto.ProductResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/produtos [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if okBody, err := parseBody(c, h.log, &in); !okBody {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// GetByID godoc
// @Summary      Obter produto por ID
// @Tags         produtos
// @Produce      json
// @Param        id   path  string  true  "ID do produto"
// @Success      200  {object}  dto.SuccessResponse{data=dto.ProductResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// List godoc
// @Summary      Listar produtos (nome, sem distinguir maiúsculas)
// @Tags         produtos
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=[]dto.ProductResponse}
// @Router       /api/produtos [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Atualizar produto
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID do produto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a atualizar"
// @Success      200   {object}  dto.SuccessResponse{data=dto.ProductResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if okBody, err := parseBody(c, h.log, &in); !okBody {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete godoc
// @Summary      Excluir produto
// @Description  Com lotes ou histórico responde 409, salvo force=true (desativação lógica).
// @Tags         produtos
// @Produce      json
// @Param        id     path   string  true   "ID do produto"
// @Param        force  query  bool    false  "Desativar em vez de remover"
// @Success      200    {object}  dto.SuccessResponse{data=dto.DeleteResponse}
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/produtos/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), c.Params("id"), c.QueryBool("force", false))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ── Fornecedores ─────────────────────────────────────────────────────────────

// SupplierHandler maneja las peticiones HTTP de proveedores.
type SupplierHandler struct {
	uc  *usecase.SupplierUseCase
	log *logger.Logger
}

// NewSupplierHandler construye el handler.
func NewSupplierHandler(uc *usecase.SupplierUseCase, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Cadastrar fornecedor
// @Tags         fornecedores
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplierRequest  true  "Dados do fornecedor"
// @Success      201   {object}  dto.SuccessResponse{data=dto.SupplierResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fornecedores [post]
func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if okBody, err := parseBody(c, h.log, &in); !okBody {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// GetByID godoc
// @Summary      Obter fornecedor por ID
// @Tags         fornecedores
// @Produce      json
// @Param        id   path  string  true  "ID do fornecedor"
// @Success      200  {object}  dto.SuccessResponse{data=dto.SupplierResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fornecedores/{id} [get]
func (h *SupplierHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// List godoc
// @Summary      Listar fornecedores
// @Tags         fornecedores
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=[]dto.SupplierResponse}
// @Router       /api/fornecedores [get]
func (h *SupplierHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Atualizar fornecedor
// @Tags         fornecedores
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID do fornecedor"
// @Param        body  body  dto.UpdateSupplierRequest  true  "Campos a atualizar"
// @Success      200   {object}  dto.SuccessResponse{data=dto.SupplierResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/fornecedores/{id} [put]
func (h *SupplierHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSupplierRequest
	if okBody, err := parseBody(c, h.log, &in); !okBody {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Delete godoc
// @Summary      Excluir fornecedor
// @Tags         fornecedores
// @Produce      json
// @Param        id     path   string  true   "ID do fornecedor"
// @Param        force  query  bool    false  "Desativar em vez de remover"
// @Success      200    {object}  dto.SuccessResponse{data=dto.DeleteResponse}
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/fornecedores/{id} [delete]
func (h *SupplierHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.Delete(c.UserContext(), c.Params("id"), c.QueryBool("force", false))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ── Locais ───────────────────────────────────────────────────────────────────

// LocationHandler expone la enumeración de destinos.
type LocationHandler struct {
	uc  *usecase.LocationUseCase
	log *logger.Logger
}

// NewLocationHandler construye el handler.
func NewLocationHandler(uc *usecase.LocationUseCase, log *logger.Logger) *LocationHandler {
	return &LocationHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar locais de destino
// @Tags         locais
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=[]dto.LocationResponse}
// @Router       /api/locais [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// GetByID godoc
// @Summary      Obter local por ID
// @Tags         locais
// @Produce      json
// @Param        id   path  string  true  "ID do local"
// @Success      200  {object}  dto.SuccessResponse{data=dto.LocationResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locais/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
