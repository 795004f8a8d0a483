package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso não encontrado")
	ErrInvalidInput      = errors.New("dados inválidos")
	ErrConflict          = errors.New("conflito com o estado atual")
	ErrInsufficientStock = errors.New("estoque insuficiente")
	ErrUnsupportedFormat = errors.New("formato de arquivo não suportado")
	ErrParse             = errors.New("arquivo malformado")
	ErrLockTimeout       = errors.New("recurso ocupado, tente novamente")
)

// FieldError añade contexto (campo y valor) a un error de dominio para que el
// cliente pueda mostrar un mensaje útil. errors.Is sigue funcionando contra Err.
type FieldError struct {
	Field string
	Value string
	Msg   string
	Err   error
}

func (e *FieldError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Err.Error()
	}
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (valor: %q)", e.Field, msg, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, msg)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Invalid construye un FieldError de ErrInvalidInput.
func Invalid(field, value, msg string) error {
	return &FieldError{Field: field, Value: value, Msg: msg, Err: ErrInvalidInput}
}

// NotFound construye un FieldError de ErrNotFound.
func NotFound(field, value string) error {
	return &FieldError{Field: field, Value: value, Msg: "não encontrado", Err: ErrNotFound}
}

// Conflict construye un FieldError de ErrConflict.
func Conflict(field, value, msg string) error {
	return &FieldError{Field: field, Value: value, Msg: msg, Err: ErrConflict}
}

// InsufficientStockError detalla disponible vs solicitado.
type InsufficientStockError struct {
	Subject   string // lote o produto
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("estoque insuficiente em %s: disponível %d, solicitado %d", e.Subject, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ParseError ubica un problema de formato en el archivo importado (fila/columna 1-based; 0 = desconocida).
type ParseError struct {
	Row    int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0 && e.Column > 0:
		return fmt.Sprintf("linha %d, coluna %d: %s", e.Row, e.Column, e.Msg)
	case e.Row > 0:
		return fmt.Sprintf("linha %d: %s", e.Row, e.Msg)
	default:
		return e.Msg
	}
}

func (e *ParseError) Unwrap() error { return ErrParse }
