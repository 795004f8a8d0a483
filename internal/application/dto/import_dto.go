package dto

// UploadResponse respuesta de POST /api/importacao/upload.
// Filename es el identificador del upload que se devuelve en /processar (campo filepath).
type UploadResponse struct {
	Filename          string              `json:"filename"`
	NomeOriginal      string              `json:"nome_original"`
	Colunas           []string            `json:"colunas"`
	Preview           []map[string]string `json:"preview"`
	TotalLinhas       int                 `json:"total_linhas"`
	CamposDisponiveis []ImportFieldDTO    `json:"campos_disponiveis"`
	ExpiraEm          string              `json:"expira_em"`
}

// ImportFieldDTO campo destino de la importación para un tipo de datos.
type ImportFieldDTO struct {
	Campo       string `json:"campo"`
	Obrigatorio bool   `json:"obrigatorio"`
}

// ProcessImportRequest body de POST /api/importacao/processar. mapeamento: coluna -> campo.
type ProcessImportRequest struct {
	Filepath   string            `json:"filepath"`
	UploadID   string            `json:"upload_id"`
	TipoDados  string            `json:"tipo_dados" validate:"required"`
	Mapeamento map[string]string `json:"mapeamento" validate:"required"`
}

// ImportRowErrorDTO error de una fila (linha = línea de la planilla, cabecera = 1).
type ImportRowErrorDTO struct {
	Linha    int    `json:"linha"`
	Mensagem string `json:"mensagem"`
}

// ImportReportDTO resultado de la importación. Importados + Erros == TotalProcessado.
type ImportReportDTO struct {
	Importados      int                 `json:"importados"`
	Erros           int                 `json:"erros"`
	TotalProcessado int                 `json:"total_processado"`
	DetalhesErros   []string            `json:"detalhes_erros"`
	ErrosDetalhados []ImportRowErrorDTO `json:"erros_detalhados"`
}
