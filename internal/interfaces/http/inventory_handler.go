package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	domaininv "github.com/jhoicas/estoque-api/internal/domain/inventory"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// InventoryHandler maneja entradas, salidas y consultas del libro de lotes.
type InventoryHandler struct {
	uc  *inventory.LedgerUseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// RegisterEntry godoc
// @Summary      Registrar entrada (cria lote)
// @Tags         estoque
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterEntryRequest  true  "produto_id, fornecedor_id, quantidade, lote, validade, numero_nf"
// @Success      201   {object}  dto.SuccessResponse{data=dto.EntryResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/estoque/entradas [post]
func (h *InventoryHandler) RegisterEntry(c *fiber.Ctx) error {
	var in dto.RegisterEntryRequest
	if okBody, err := parseBody(c, h.log, &in); !okBody {
		return err
	}
	expires, err := domaininv.ParseDate("validade", in.Validade)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.ReceiveStock(c.UserContext(), inventory.ReceiveInput{
		ProductID:     in.ProdutoID.String(),
		SupplierID:    in.FornecedorID.String(),
		Quantity:      int64(in.Quantidade),
		LotCode:       in.Lote,
		ExpiresAt:     expires,
		InvoiceNumber: in.NumeroNF,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// RegisterExit godoc
// @Summary      Registrar saída
// @Description  Com lote_id desconta do lote informado; sem lote_id distribui entre os lotes
// @Description  do produto pela validade mais próxima.
// @Tags         estoque
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterExitRequest  true  "produto_id, lote_id?, quantidade, local_destino_id, solicitante, observacoes?"
// @Success      201   {object}  dto.SuccessResponse{data=dto.ExitResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/estoque/saidas [post]
func (h *InventoryHandler) RegisterExit(c *fiber.Ctx) error {
	var in dto.RegisterExitRequest
	if okBody, err := parseBody(c, h.log, &in); !okBody {
		return err
	}
	out, err := h.uc.RegisterExit(c.UserContext(), inventory.ExitInput{
		ProductID:  in.ProdutoID.String(),
		LotID:      in.LoteID.String(),
		Quantity:   int64(in.Quantidade),
		LocationID: in.LocalDestinoID.String(),
		Requester:  in.Solicitante,
		Notes:      in.Observacoes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// ListLots godoc
// @Summary      Lotes disponíveis do produto
// @Description  Ordem de alocação: validade mais próxima primeiro, sem validade por último.
// @Tags         estoque
// @Produce      json
// @Param        produtoId  path  string  true  "ID do produto"
// @Success      200  {object}  dto.SuccessResponse{data=[]dto.LotResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/estoque/lotes/{produtoId} [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	out, err := h.uc.ListAvailableLots(c.UserContext(), c.Params("produtoId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// CurrentStock godoc
// @Summary      Estoque atual por produto
// @Tags         estoque
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=[]dto.StockItemResponse}
// @Router       /api/estoque/atual [get]
func (h *InventoryHandler) CurrentStock(c *fiber.Ctx) error {
	out, err := h.uc.StockView(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Movements godoc
// @Summary      Histórico de movimentações (mais recente primeiro)
// @Tags         estoque
// @Produce      json
// @Param        tipo         query  string  false  "entrada | saida"
// @Param        data_inicio  query  string  false  "AAAA-MM-DD ou DD/MM/AAAA (inclusive)"
// @Param        data_fim     query  string  false  "AAAA-MM-DD ou DD/MM/AAAA (inclusive)"
// @Param        solicitante  query  string  false  "Trecho do solicitante"
// @Param        produto      query  string  false  "Trecho do nome do produto"
// @Param        limit        query  int     false  "Limite (0 = todos)"
// @Param        offset       query  int     false  "Deslocamento"
// @Success      200  {object}  dto.SuccessResponse{data=[]dto.MovementResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/estoque/movimentacoes [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	q, err := parseMovementQuery(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.QueryMovements(c.UserContext(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// parseMovementQuery traduce los filtros de query string. data_fim es inclusiva: el filtro
// interno usa el día siguiente como límite exclusivo.
func parseMovementQuery(c *fiber.Ctx) (inventory.MovementQuery, error) {
	var raw dto.MovementQuery
	if err := c.QueryParser(&raw); err != nil {
		return inventory.MovementQuery{}, domain.Invalid("query", "", "parâmetros inválidos")
	}
	if err := validateStruct(&raw); err != nil {
		return inventory.MovementQuery{}, err
	}
	q := inventory.MovementQuery{
		Kind:              inventory.KindFromWire(raw.Tipo),
		RequesterContains: raw.Solicitante,
		ProductContains:   raw.Produto,
		Limit:             raw.Limit,
		Offset:            raw.Offset,
	}
	from, err := domaininv.ParseDate("data_inicio", raw.DataInicio)
	if err != nil {
		return inventory.MovementQuery{}, err
	}
	to, err := domaininv.ParseDate("data_fim", raw.DataFim)
	if err != nil {
		return inventory.MovementQuery{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return inventory.MovementQuery{}, domain.Invalid("data_fim", raw.DataFim, "anterior a data_inicio")
	}
	q.From = from
	if to != nil {
		next := to.AddDate(0, 0, 1)
		q.To = &next
	}
	return q, nil
}
