package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SuccessResponse envoltorio de éxito: {"success": true, "data": ...}.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse cuerpo de error HTTP: {"success": false, "message": "..."}.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PageRequest paginación para listados. Limit 0 = sin límite.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=1000"`
	Offset int `query:"offset" validate:"min=0"`
}

// FlexID acepta IDs como número JSON o como string (el cliente envía parseInt(...) en algunos formularios).
type FlexID string

// UnmarshalJSON implementa json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id inválido: %s", b)
	}
	*f = FlexID(n.String())
	return nil
}

// String devuelve el ID como string.
func (f FlexID) String() string { return string(f) }

// FlexInt acepta enteros como número JSON o string numérico ("" y null = 0).
type FlexInt int64

// UnmarshalJSON implementa json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("inteiro inválido: %s", raw)
	}
	*f = FlexInt(n)
	return nil
}
