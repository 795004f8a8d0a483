package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateLotCode genera un código L<yyyymmdd>-<6 hex> para entradas sin lote informado.
func GenerateLotCode(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return "L" + now.Format("20060102") + "-" + strings.ToUpper(suffix)
}
