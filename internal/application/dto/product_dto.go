package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/produtos.
type CreateProductRequest struct {
	Nome          string           `json:"nome" validate:"required,max=200"`
	Categoria     string           `json:"categoria" validate:"max=100"`
	EstoqueMinimo *FlexInt         `json:"estoque_minimo"` // nil = 10
	Descricao     string           `json:"descricao"`
	PrecoUnitario *decimal.Decimal `json:"preco_unitario"`
}

// UpdateProductRequest body para PUT /api/produtos/:id. Campos nil no se modifican.
type UpdateProductRequest struct {
	Nome          *string          `json:"nome" validate:"omitempty,max=200"`
	Categoria     *string          `json:"categoria" validate:"omitempty,max=100"`
	EstoqueMinimo *FlexInt         `json:"estoque_minimo"`
	Descricao     *string          `json:"descricao"`
	PrecoUnitario *decimal.Decimal `json:"preco_unitario"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string           `json:"id"`
	Nome          string           `json:"nome"`
	Categoria     string           `json:"categoria"`
	EstoqueMinimo int64            `json:"estoque_minimo"`
	Descricao     string           `json:"descricao"`
	PrecoUnitario *decimal.Decimal `json:"preco_unitario"`
	CriadoEm      time.Time        `json:"criado_em"`
	AtualizadoEm  time.Time        `json:"atualizado_em"`
	ExcluidoEm    *time.Time       `json:"excluido_em,omitempty"`
}

// CreateSupplierRequest body para POST /api/fornecedores.
type CreateSupplierRequest struct {
	Nome    string `json:"nome" validate:"required,max=200"`
	Contato string `json:"contato" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// UpdateSupplierRequest body para PUT /api/fornecedores/:id.
type UpdateSupplierRequest struct {
	Nome    *string `json:"nome" validate:"omitempty,max=200"`
	Contato *string `json:"contato" validate:"omitempty,max=200"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID           string     `json:"id"`
	Nome         string     `json:"nome"`
	Contato      string     `json:"contato"`
	Email        string     `json:"email"`
	CriadoEm     time.Time  `json:"criado_em"`
	AtualizadoEm time.Time  `json:"atualizado_em"`
	ExcluidoEm   *time.Time `json:"excluido_em,omitempty"`
}

// LocationResponse salida de un destino.
type LocationResponse struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// DeleteResponse resultado de un DELETE: físico o lógico (force).
type DeleteResponse struct {
	ID      string `json:"id"`
	Modo    string `json:"modo"` // removido | desativado
	Message string `json:"message"`
}
