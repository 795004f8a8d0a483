package dto

import "time"

// RegisterEntryRequest body para POST /api/estoque/entradas.
type RegisterEntryRequest struct {
	ProdutoID    FlexID  `json:"produto_id" validate:"required"`
	FornecedorID FlexID  `json:"fornecedor_id"`
	Quantidade   FlexInt `json:"quantidade"`
	Lote         string  `json:"lote" validate:"max=100"`
	Validade     string  `json:"validade"` // YYYY-MM-DD, DD/MM/YYYY o vacío
	NumeroNF     string  `json:"numero_nf" validate:"max=100"`
}

// EntryResponse resultado de una entrada: lote creado + movimiento.
type EntryResponse struct {
	Lote         LotResponse      `json:"lote"`
	Movimentacao MovementResponse `json:"movimentacao"`
}

// RegisterExitRequest body para POST /api/estoque/saidas. Sin lote_id se asigna automáticamente (FEFO).
type RegisterExitRequest struct {
	ProdutoID      FlexID  `json:"produto_id"`
	LoteID         FlexID  `json:"lote_id"`
	Quantidade     FlexInt `json:"quantidade"`
	LocalDestinoID FlexID  `json:"local_destino_id" validate:"required"`
	Solicitante    string  `json:"solicitante" validate:"max=200"`
	Observacoes    string  `json:"observacoes" validate:"max=1000"`
}

// ExitResponse resultado de una salida: uno o más movimientos con el mismo transacao_id.
type ExitResponse struct {
	TransacaoID     string             `json:"transacao_id"`
	QuantidadeTotal int64              `json:"quantidade_total"`
	Movimentacoes   []MovementResponse `json:"movimentacoes"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID                   string    `json:"id"`
	ProdutoID            string    `json:"produto_id"`
	Codigo               string    `json:"codigo"`
	FornecedorID         string    `json:"fornecedor_id,omitempty"`
	QuantidadeRecebida   int64     `json:"quantidade_recebida"`
	QuantidadeDisponivel int64     `json:"quantidade_disponivel"`
	Validade             *string   `json:"validade"`
	NumeroNF             string    `json:"numero_nf,omitempty"`
	DataEntrada          time.Time `json:"data_entrada"`
	Vencido              bool      `json:"vencido"`
}

// MovementResponse salida de un movimiento con nombres resueltos para mostrar.
type MovementResponse struct {
	ID             string    `json:"id"`
	TransacaoID    string    `json:"transacao_id"`
	Tipo           string    `json:"tipo"` // entrada | saida
	ProdutoID      string    `json:"produto_id"`
	ProdutoNome    string    `json:"produto_nome"`
	LoteID         string    `json:"lote_id"`
	LoteCodigo     string    `json:"lote_codigo"`
	Quantidade     int64     `json:"quantidade"`
	Data           time.Time `json:"data"`
	FornecedorID   string    `json:"fornecedor_id,omitempty"`
	FornecedorNome string    `json:"fornecedor_nome,omitempty"`
	NumeroNF       string    `json:"numero_nf,omitempty"`
	LocalDestinoID string    `json:"local_destino_id,omitempty"`
	LocalDestino   string    `json:"local_destino,omitempty"`
	Solicitante    string    `json:"solicitante,omitempty"`
	Observacoes    string    `json:"observacoes,omitempty"`
}

// MovementQuery filtros de GET /api/estoque/movimentacoes (y del export XLSX).
type MovementQuery struct {
	Tipo        string `query:"tipo" validate:"omitempty,oneof=entrada saida"`
	DataInicio  string `query:"data_inicio"`
	DataFim     string `query:"data_fim"`
	Solicitante string `query:"solicitante"`
	Produto     string `query:"produto"`
	PageRequest
}

// StockItemResponse fila de GET /api/estoque/atual.
type StockItemResponse struct {
	ProdutoID       string  `json:"produto_id"`
	ProdutoNome     string  `json:"produto_nome"`
	Categoria       string  `json:"categoria"`
	QuantidadeAtual int64   `json:"quantidade_atual"`
	EstoqueMinimo   int64   `json:"estoque_minimo"`
	LotesAtivos     int     `json:"lotes_ativos"`
	ProximaValidade *string `json:"proxima_validade"`
	Status          string  `json:"status"` // baixo | normal
}
