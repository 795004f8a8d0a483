package dto

// MetricCardDTO tarjeta del dashboard. Variacao solo en entradas/saídas; Status solo en los indicadores de alerta.
type MetricCardDTO struct {
	Valor    int64    `json:"valor"`
	Label    string   `json:"label"`
	Variacao *float64 `json:"variacao,omitempty"`
	Status   string   `json:"status,omitempty"` // normal | alerta
}

// DashboardMetricsDTO respuesta de GET /api/dashboard/metricas.
type DashboardMetricsDTO struct {
	TotalProdutos           MetricCardDTO `json:"total_produtos"`
	TotalItensEstoque       MetricCardDTO `json:"total_itens_estoque"`
	EntradasMes             MetricCardDTO `json:"entradas_mes"`
	SaidasMes               MetricCardDTO `json:"saidas_mes"`
	ProdutosEstoqueBaixo    MetricCardDTO `json:"produtos_estoque_baixo"`
	ProdutosValidadeProxima MetricCardDTO `json:"produtos_validade_proxima"`
	PedidosPendentes        MetricCardDTO `json:"pedidos_pendentes"`
	CalculadoEm             string        `json:"calculado_em"`
}

// MonthlyMovementDTO punto del gráfico de movimentações (cantidades del mes).
type MonthlyMovementDTO struct {
	Periodo  string `json:"periodo"` // "Jan/2026"
	Entradas int64  `json:"entradas"`
	Saidas   int64  `json:"saidas"`
}

// LocationDistributionDTO cantidad total retirada hacia un destino.
type LocationDistributionDTO struct {
	LocalID    string `json:"local_id"`
	Local      string `json:"local"`
	Quantidade int64  `json:"quantidade"`
}

// ChartsDTO respuesta de GET /api/dashboard/graficos.
type ChartsDTO struct {
	Movimentacoes      []MonthlyMovementDTO      `json:"movimentacoes"`
	DistribuicaoLocais []LocationDistributionDTO `json:"distribuicao_locais"`
}

// AlertDTO tarjeta de GET /api/dashboard/alertas.
type AlertDTO struct {
	Tipo       string `json:"tipo"` // estoque_baixo | validade_proxima | vencido
	Titulo     string `json:"titulo"`
	Descricao  string `json:"descricao"`
	Prioridade string `json:"prioridade"` // alta | media
	ProdutoID  string `json:"produto_id"`
	LoteID     string `json:"lote_id,omitempty"`
}
