// Package tax calcula el desglose de IVA (BTW) a partir de precios con IVA incluido.
//
// Los importes unitarios se redondean a céntimos (mitad hacia arriba) antes de multiplicar
// por la cantidad, de modo que precio unitario × cantidad = subtotal impreso en la factura.
package tax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factuur-api/internal/domain"
)

// Países reconocidos. SecondaryCountry aplica la tarifa reducida del 6%.
const (
	PrimaryCountry   = "NL"
	SecondaryCountry = "BE"
)

var (
	// StandardRate tarifa general (categorías que empiezan por 'c').
	StandardRate = decimal.RequireFromString("0.21")
	// ReducedRate tarifa reducida para compradores fuera de SecondaryCountry.
	ReducedRate = decimal.RequireFromString("0.09")
	// SecondaryReducedRate tarifa reducida para compradores de SecondaryCountry.
	SecondaryReducedRate = decimal.RequireFromString("0.06")

	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ErrEmptyCategory la referencia de categoría está vacía y no se puede elegir tarifa.
var ErrEmptyCategory = fmt.Errorf("%w: referencia de categoría vacía", domain.ErrInvalidInput)

// SelectTaxRate elige la tarifa según la primera letra de la referencia de categoría
// y el país del comprador. Función pura.
func SelectTaxRate(categoryReference, buyerCountryCode string) (decimal.Decimal, error) {
	if categoryReference == "" {
		return decimal.Zero, ErrEmptyCategory
	}
	first, _ := utf8.DecodeRuneInString(categoryReference)
	if unicode.ToLower(first) == 'c' {
		return StandardRate, nil
	}
	if strings.EqualFold(buyerCountryCode, SecondaryCountry) {
		return SecondaryReducedRate, nil
	}
	return ReducedRate, nil
}

// LineBreakdown desglose de una línea. Transitorio, nunca se persiste.
type LineBreakdown struct {
	Quantity              int
	Rate                  decimal.Decimal
	TaxExclusiveUnitPrice decimal.Decimal
	TaxAmountPerUnit      decimal.Decimal
	SubtotalExclusiveTax  decimal.Decimal
	// LineTaxAmount = Quantity × TaxAmountPerUnit.
	LineTaxAmount decimal.Decimal
}

// ComputeLineBreakdown descompone un precio unitario con IVA incluido.
//
//	excl     = round2(P / (1 + r))
//	tax      = P - excl
//	subtotal = quantity × (P - tax)
//
// Con P en céntimos, excl + tax == P exactamente.
// Se asume quantity >= 1 (validado antes) y 0 <= r < 1.
func ComputeLineBreakdown(unitPriceInclusiveTax, rate decimal.Decimal, quantity int) LineBreakdown {
	excl := unitPriceInclusiveTax.Div(one.Add(rate)).Round(2)
	taxPerUnit := unitPriceInclusiveTax.Sub(excl)
	q := decimal.NewFromInt(int64(quantity))
	return LineBreakdown{
		Quantity:              quantity,
		Rate:                  rate,
		TaxExclusiveUnitPrice: excl,
		TaxAmountPerUnit:      taxPerUnit,
		SubtotalExclusiveTax:  q.Mul(unitPriceInclusiveTax.Sub(taxPerUnit)),
		LineTaxAmount:         q.Mul(taxPerUnit),
	}
}

// Totals acumulados del pedido.
type Totals struct {
	TotalExclusiveTax decimal.Decimal
	TotalTaxAmount    decimal.Decimal
}

// Accumulate suma una línea a los totales. Las sumas no dependen del orden.
func (t Totals) Accumulate(b LineBreakdown) Totals {
	return Totals{
		TotalExclusiveTax: t.TotalExclusiveTax.Add(b.SubtotalExclusiveTax),
		TotalTaxAmount:    t.TotalTaxAmount.Add(b.LineTaxAmount),
	}
}

// TotalInclusiveTax total con IVA = base + impuesto, exacto.
func (t Totals) TotalInclusiveTax() decimal.Decimal {
	return t.TotalExclusiveTax.Add(t.TotalTaxAmount)
}

// PercentLabel representa la tarifa como porcentaje entero: 0.21 → "21%".
func PercentLabel(rate decimal.Decimal) string {
	return rate.Mul(hundred).StringFixed(0) + "%"
}
