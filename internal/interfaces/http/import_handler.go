package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/importer"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// ImportHandler expone el pipeline de importación en dos pasos: upload y processar.
type ImportHandler struct {
	uc  *importer.ImportUseCase
	log *logger.Logger
}

// NewImportHandler construye el handler.
func NewImportHandler(uc *importer.ImportUseCase, log *logger.Logger) *ImportHandler {
	return &ImportHandler{uc: uc, log: log}
}

// Upload godoc
// @Summary      Enviar planilha (CSV ou XLSX)
// @Description  Lê o arquivo, guarda temporariamente e devolve colunas, prévia e campos de destino.
// @Tags         importacao
// @Accept       mpfd
// @Produce      json
// @Param        arquivo     formData  file    true  "Arquivo .csv ou .xlsx"
// @Param        tipo_dados  formData  string  true  "produtos | fornecedores | estoque_atual | entradas | saidas"
// @Success      200  {object}  dto.SuccessResponse{data=dto.UploadResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      415  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/importacao/upload [post]
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("arquivo")
	if err != nil {
		return respondError(c, h.log, domain.Invalid("arquivo", "", "nenhum arquivo enviado"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, h.log, err)
	}

	out, err := h.uc.Upload(c.UserContext(), fh.Filename, c.FormValue("tipo_dados"), data)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Process godoc
// @Summary      Processar importação
// @Description  Aplica o mapeamento coluna → campo. Linhas com erro são relatadas e não interrompem as demais.
// @Tags         importacao
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessImportRequest  true  "upload_id (ou filepath), tipo_dados, mapeamento"
// @Success      200  {object}  dto.SuccessResponse{data=dto.ImportReportDTO}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/importacao/processar [post]
func (h *ImportHandler) Process(c *fiber.Ctx) error {
	var in dto.ProcessImportRequest
	if okBody, err := parseBody(c, h.log, &in); !okBody {
		return err
	}
	out, err := h.uc.Process(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Fields godoc
// @Summary      Campos de destino por tipo de dados
// @Tags         importacao
// @Produce      json
// @Param        tipo_dados  query  string  false  "Tipo; vazio lista os tipos disponíveis"
// @Success      200  {object}  dto.SuccessResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/importacao/campos [get]
func (h *ImportHandler) Fields(c *fiber.Ctx) error {
	dataType := c.Query("tipo_dados")
	if dataType == "" {
		return ok(c, fiber.StatusOK, importer.DataTypes())
	}
	fields, err := importer.Fields(dataType)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, fields)
}
