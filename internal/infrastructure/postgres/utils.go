package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/estoque-api/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation   = "23505"
	codeCheckViolation    = "23514"
	codeForeignKey        = "23503"
	codeLockNotAvailable  = "55P03"
	codeSerializationFail = "40001"
	codeDeadlockDetected  = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// mapError traduce errores de PostgreSQL a errores de dominio; el resto se envuelve con op.
func mapError(op string, err error) error {
	switch pgCode(err) {
	case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFail:
		return fmt.Errorf("%s: %w", op, domain.ErrLockTimeout)
	case codeCheckViolation:
		return &domain.FieldError{Field: "quantidade", Msg: "viola restrição de estoque", Err: domain.ErrInvalidInput}
	case codeForeignKey:
		return &domain.FieldError{Field: "referência", Msg: "registro relacionado não existe ou está em uso", Err: domain.ErrConflict}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func emptyIfNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
