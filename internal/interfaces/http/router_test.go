package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/estoque-api/internal/application/analytics"
	"github.com/jhoicas/estoque-api/internal/application/importer"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/report"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/infrastructure/events"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/internal/infrastructure/metrics"
	"github.com/jhoicas/estoque-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/estoque-api/internal/interfaces/http"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// buildTestApp arma la aplicación completa sobre el almacenamiento en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()
	s := memory.NewStore(entity.DefaultLocations())
	bus := events.NewBus(log)
	prom := metrics.NewPrometheus()

	products := memory.NewProductRepository(s)
	suppliers := memory.NewSupplierRepository(s)
	locations := memory.NewLocationRepository(s)
	lots := memory.NewLotRepository(s)
	movs := memory.NewMovementRepository(s)

	productUC := usecase.NewProductUseCase(products, lots, movs, bus)
	supplierUC := usecase.NewSupplierUseCase(suppliers, lots, bus)
	locationUC := usecase.NewLocationUseCase(locations)
	ledger := inventory.NewLedgerUseCase(memory.NewTxRunner(s), products, suppliers, locations, lots, movs,
		inventory.Options{Metrics: prom, Events: bus, Logger: log})

	return apphttp.NewApp(apphttp.ServerConfig{Name: "estoque-test"}, apphttp.RouterDeps{
		ProductUC:   productUC,
		SupplierUC:  supplierUC,
		LocationUC:  locationUC,
		Ledger:      ledger,
		DashboardUC: appanalytics.NewDashboardUseCase(products, lots, movs, locations, bus, appanalytics.Options{Metrics: prom}),
		ImportUC:    importer.NewImportUseCase(productUC, supplierUC, locationUC, ledger, importer.Options{Metrics: prom, Logger: log}),
		ReportUC:    report.NewReportUseCase(ledger, products, pdf.NewMarotoStockReport(), nil),
		Hub:         apphttp.NewHub(log),
		Metrics:     prom.Handler(),
		Log:         log,
	})
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewBuffer(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func createProduct(t *testing.T, app *fiber.App, name string) string {
	t.Helper()
	resp, env := doJSON(t, app, http.MethodPost, "/api/produtos", map[string]interface{}{"nome": name, "estoque_minimo": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	return decode[map[string]interface{}](t, env)["id"].(string)
}

// ──────────────────────────────────────────────────────────────────────────────
// Envoltorio y errores
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth_DevuelveEnvoltorioDeExito(t *testing.T) {
	app := buildTestApp(t)
	resp, env := doJSON(t, app, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestRutaInexistente_404ConEnvoltorio(t *testing.T) {
	app := buildTestApp(t)
	resp, env := doJSON(t, app, http.MethodGet, "/api/nao-existe", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
}

func TestStatusFor_TablaDeErrores(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.NotFound("produto_id", "x"), http.StatusNotFound},
		{domain.Invalid("quantidade", "0", "deve ser maior que zero"), http.StatusBadRequest},
		{&domain.InsufficientStockError{Subject: "lote L1", Available: 1, Requested: 2}, http.StatusConflict},
		{domain.Conflict("nome", "Gaze", "duplicado"), http.StatusConflict},
		{fmt.Errorf("arquivo: %w", domain.ErrUnsupportedFormat), http.StatusUnsupportedMediaType},
		{&domain.ParseError{Row: 3, Msg: "aspas"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("lote 1: %w", domain.ErrLockTimeout), http.StatusServiceUnavailable},
		{errors.New("conexão perdida"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, apphttp.StatusFor(tc.err), tc.err.Error())
	}
}

func TestErrorHandler_500NoFiltraDetalles(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: senha incorreta para usuário postgres")
	})

	resp, env := send(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, env.Success)
	assert.NotContains(t, env.Message, "senha")
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestProdutos_CrudYConflicto(t *testing.T) {
	app := buildTestApp(t)
	id := createProduct(t, app, "Dipirona 500mg")

	resp, env := doJSON(t, app, http.MethodPost, "/api/produtos", `{"nome":"DIPIRONA 500MG"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)

	resp, env = doJSON(t, app, http.MethodPost, "/api/produtos", `{"nome":"Gaze","estoque_minimo":"0"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, env.Message)

	resp, env = doJSON(t, app, http.MethodPut, "/api/produtos/"+id, `{"categoria":"medicamentos"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, "Medicamentos", decode[map[string]interface{}](t, env)["categoria"])

	resp, env = doJSON(t, app, http.MethodGet, "/api/produtos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]interface{}](t, env), 1)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/produtos/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/produtos/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProdutos_CuerpoInvalido400(t *testing.T) {
	app := buildTestApp(t)
	resp, env := doJSON(t, app, http.MethodPost, "/api/produtos", `{"nome":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestLocais_SeisDestinosSembrados(t *testing.T) {
	app := buildTestApp(t)
	resp, env := doJSON(t, app, http.MethodGet, "/api/locais", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]string](t, env), 6)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estoque
// ──────────────────────────────────────────────────────────────────────────────

func TestEstoque_EntradaSalidaConIDsNumericos(t *testing.T) {
	app := buildTestApp(t)
	p := createProduct(t, app, "Amoxicilina")

	resp, env := doJSON(t, app, http.MethodPost, "/api/estoque/entradas", map[string]interface{}{
		"produto_id": p, "quantidade": "10", "lote": "AMX-01", "validade": "31/12/2030", "numero_nf": "123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	entry := decode[map[string]map[string]interface{}](t, env)
	lotID := entry["lote"]["id"].(string)
	assert.Equal(t, "2030-12-31", entry["lote"]["validade"])

	// local_destino_id llega como número desde el formulario
	resp, env = doJSON(t, app, http.MethodPost, "/api/estoque/saidas",
		fmt.Sprintf(`{"produto_id":%q,"lote_id":%q,"quantidade":4,"local_destino_id":3,"solicitante":"Dra. Ana"}`, p, lotID))
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	resp, env = doJSON(t, app, http.MethodPost, "/api/estoque/saidas",
		fmt.Sprintf(`{"produto_id":%q,"quantidade":7,"local_destino_id":"1"}`, p))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, env.Message, "estoque insuficiente")

	resp, env = doJSON(t, app, http.MethodGet, "/api/estoque/lotes/"+p, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lots := decode[[]map[string]interface{}](t, env)
	require.Len(t, lots, 1)
	assert.EqualValues(t, 6, lots[0]["quantidade_disponivel"])

	resp, env = doJSON(t, app, http.MethodGet, "/api/estoque/atual", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stock := decode[[]map[string]interface{}](t, env)
	require.Len(t, stock, 1)
	assert.EqualValues(t, 6, stock[0]["quantidade_atual"])
}

func TestEstoque_SalidaSinDestino400(t *testing.T) {
	app := buildTestApp(t)
	p := createProduct(t, app, "Luvas")

	resp, env := doJSON(t, app, http.MethodPost, "/api/estoque/saidas", fmt.Sprintf(`{"produto_id":%q,"quantidade":1}`, p))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Message, "local_destino_id")
}

func TestEstoque_MovimentacoesFiltros(t *testing.T) {
	app := buildTestApp(t)
	p := createProduct(t, app, "Seringa 5ml")
	resp, env := doJSON(t, app, http.MethodPost, "/api/estoque/entradas", map[string]interface{}{"produto_id": p, "quantidade": 20})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	resp, env = doJSON(t, app, http.MethodPost, "/api/estoque/saidas",
		map[string]interface{}{"produto_id": p, "quantidade": 2, "local_destino_id": "2", "solicitante": "Carlos"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	resp, env = doJSON(t, app, http.MethodGet, "/api/estoque/movimentacoes?tipo=saida&solicitante=carl&produto=seringa", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	movs := decode[[]map[string]interface{}](t, env)
	require.Len(t, movs, 1)
	assert.Equal(t, "Lab. Clínico", movs[0]["local_destino"])

	resp, env = doJSON(t, app, http.MethodGet, "/api/estoque/movimentacoes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]map[string]interface{}](t, env)
	require.Len(t, all, 2)
	assert.Equal(t, "saida", all[0]["tipo"], "mais recente primeiro")

	resp, _ = doJSON(t, app, http.MethodGet, "/api/estoque/movimentacoes?tipo=transferencia", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/estoque/movimentacoes?data_inicio=ontem", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/estoque/movimentacoes?data_inicio=2026-05-10&data_fim=2026-05-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard, importación y relatórios
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboard_MetricasReflejanEntrada(t *testing.T) {
	app := buildTestApp(t)
	p := createProduct(t, app, "Atadura")

	_, env := doJSON(t, app, http.MethodGet, "/api/dashboard/metricas", nil)
	before := decode[map[string]map[string]interface{}](t, env)
	assert.EqualValues(t, 0, before["total_itens_estoque"]["valor"])

	resp, env := doJSON(t, app, http.MethodPost, "/api/estoque/entradas", map[string]interface{}{"produto_id": p, "quantidade": 12})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	resp, env = doJSON(t, app, http.MethodGet, "/api/dashboard/metricas", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	after := decode[map[string]map[string]interface{}](t, env)
	assert.EqualValues(t, 12, after["total_itens_estoque"]["valor"], "o evento invalida a cache")
	assert.EqualValues(t, 1, after["entradas_mes"]["valor"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/dashboard/graficos", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, env = doJSON(t, app, http.MethodGet, "/api/dashboard/graficos/movimentacoes", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]interface{}](t, env), 6)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/dashboard/alertas", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func multipartUpload(t *testing.T, filename, dataType, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("arquivo", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("tipo_dados", dataType))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/importacao/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImportacao_UploadYProcesar(t *testing.T) {
	app := buildTestApp(t)
	csv := "Nome;Categoria;Mínimo\nGaze;materiais;20\nÁlcool 70%;Antissépticos;x\n"

	resp, env := send(t, app, multipartUpload(t, "produtos.csv", "produtos", csv))
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	up := decode[map[string]interface{}](t, env)
	assert.Equal(t, []interface{}{"Nome", "Categoria", "Mínimo"}, up["colunas"])
	assert.EqualValues(t, 2, up["total_linhas"])

	resp, env = doJSON(t, app, http.MethodPost, "/api/importacao/processar", map[string]interface{}{
		"filepath":   "/tmp/" + up["filename"].(string),
		"tipo_dados": "produtos",
		"mapeamento": map[string]string{"Nome": "nome", "Categoria": "categoria", "Mínimo": "estoque_minimo"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	rep := decode[map[string]interface{}](t, env)
	assert.EqualValues(t, 1, rep["importados"])
	assert.EqualValues(t, 1, rep["erros"])

	resp, env = doJSON(t, app, http.MethodGet, "/api/produtos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]interface{}](t, env), 1)
}

func TestImportacao_FormatoNoSoportado415(t *testing.T) {
	app := buildTestApp(t)
	resp, env := send(t, app, multipartUpload(t, "produtos.txt", "produtos", "Nome\nGaze\n"))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestImportacao_CSVMalformado422(t *testing.T) {
	app := buildTestApp(t)
	resp, env := send(t, app, multipartUpload(t, "produtos.csv", "produtos", "Nome,Categoria\nGa\"ze,Materiais\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Message, "linha 2")
}

func TestRelatorios_DescargasConContentType(t *testing.T) {
	app := buildTestApp(t)
	createProduct(t, app, "Esparadrapo")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/relatorios/estoque.pdf", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp2, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/relatorios/movimentacoes.xlsx?tipo=entrada", nil), -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Contains(t, resp2.Header.Get("Content-Disposition"), ".xlsx")
}

func TestMetrics_ExponePrometheus(t *testing.T) {
	app := buildTestApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestWebSocket_SinUpgrade426(t *testing.T) {
	app := buildTestApp(t)
	resp, _ := doJSON(t, app, http.MethodGet, "/ws/eventos", nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
