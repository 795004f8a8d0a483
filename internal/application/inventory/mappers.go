package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// Tipos de movimiento en el wire.
const (
	WireKindEntry = "entrada"
	WireKindExit  = "saida"
)

// KindFromWire traduce "entrada"/"saida" al tipo interno (vacío si no coincide).
func KindFromWire(s string) string {
	switch s {
	case WireKindEntry:
		return entity.MovementKindEntry
	case WireKindExit:
		return entity.MovementKindExit
	}
	return ""
}

func kindToWire(kind string) string {
	if kind == entity.MovementKindEntry {
		return WireKindEntry
	}
	return WireKindExit
}

// nameIndex resuelve IDs a nombres para las respuestas.
type nameIndex struct {
	products  map[string]string
	suppliers map[string]string
	locations map[string]string
	lots      map[string]string
}

// names arma el índice con los destinos cargados. Ante error devuelve igualmente un índice vacío usable.
func (uc *LedgerUseCase) names(ctx context.Context) (*nameIndex, error) {
	idx := &nameIndex{
		products:  map[string]string{},
		suppliers: map[string]string{},
		locations: map[string]string{},
		lots:      map[string]string{},
	}
	locs, err := uc.locations.List(ctx)
	if err != nil {
		return idx, fmt.Errorf("listar locais: %w", err)
	}
	for _, l := range locs {
		idx.locations[l.ID] = l.Name
	}
	return idx, nil
}

// responseNames se usa después de confirmar: la operación ya ocurrió, así que un fallo al leer
// los destinos solo se registra y la respuesta sale sin el nombre del local.
func (uc *LedgerUseCase) responseNames(ctx context.Context) *nameIndex {
	idx, err := uc.names(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("nomes de locais indisponíveis para a resposta")
	}
	return idx
}

func (idx *nameIndex) loadSuppliers(ctx context.Context, repo repository.SupplierRepository) error {
	list, err := repo.List(ctx, true)
	if err != nil {
		return err
	}
	for _, s := range list {
		idx.suppliers[s.ID] = s.Name
	}
	return nil
}

func (idx *nameIndex) movement(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		TransacaoID:    m.TransactionID,
		Tipo:           kindToWire(m.Kind),
		ProdutoID:      m.ProductID,
		ProdutoNome:    idx.products[m.ProductID],
		LoteID:         m.LotID,
		LoteCodigo:     idx.lots[m.LotID],
		Quantidade:     m.Quantity,
		Data:           m.OccurredAt,
		FornecedorID:   m.SupplierID,
		FornecedorNome: idx.suppliers[m.SupplierID],
		NumeroNF:       m.InvoiceNumber,
		LocalDestinoID: m.LocationID,
		LocalDestino:   idx.locations[m.LocationID],
		Solicitante:    m.Requester,
		Observacoes:    m.Notes,
	}
}

func toLotResponse(l *entity.Lot, today time.Time) dto.LotResponse {
	return dto.LotResponse{
		ID:                   l.ID,
		ProdutoID:            l.ProductID,
		Codigo:               l.Code,
		FornecedorID:         l.SupplierID,
		QuantidadeRecebida:   l.Received,
		QuantidadeDisponivel: l.Remaining,
		Validade:             formatDate(l.ExpiresAt),
		NumeroNF:             l.InvoiceNumber,
		DataEntrada:          l.ReceivedAt,
		Vencido:              l.ExpiresAt != nil && l.ExpiresAt.Before(today),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func notFoundProduct(id string) error {
	return domain.NotFound("produto_id", id)
}
