package pdf

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormatEuro "€ " + importe con 2 decimales (redondeo half-up para importes >= 0).
func FormatEuro(v decimal.Decimal) string {
	return "€ " + v.StringFixed(2)
}

// FormatDate fecha nl-NL con día y mes a dos dígitos: 17-10-2026.
func FormatDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// CountryName nombre del país en neerlandés. Solo hay dos países en alcance;
// cualquier otro código se muestra tal cual.
func CountryName(code string) string {
	switch code {
	case "NL":
		return "Nederland"
	case "BE":
		return "België"
	default:
		return code
	}
}
