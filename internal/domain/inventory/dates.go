package inventory

import (
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/internal/domain"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/06",
}

// excelEpoch es el día 0 de los números de serie de fecha de Excel (sistema 1900).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DateOnly trunca a la fecha (00:00 UTC). nil permanece nil.
func DateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	out := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &out
}

// ParseDate interpreta una validade: ISO (YYYY-MM-DD), brasileño (DD/MM/YYYY), RFC3339
// o número de serie de Excel. Cadena vacía = sin fecha.
func ParseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateOnly(&t), nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && serial < 2958466 {
		t := excelEpoch.AddDate(0, 0, int(serial))
		return &t, nil
	}
	return nil, domain.Invalid(field, raw, "data inválida (use AAAA-MM-DD ou DD/MM/AAAA)")
}
