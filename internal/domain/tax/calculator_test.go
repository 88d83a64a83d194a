package tax_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factuur-api/internal/domain"
	"github.com/jhoicas/factuur-api/internal/domain/tax"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// SelectTaxRate
// ──────────────────────────────────────────────────────────────────────────────

func TestSelectTaxRate_Tabla(t *testing.T) {
	cases := []struct {
		name     string
		category string
		country  string
		want     string
	}{
		{"categoria c en NL", "c-boeken", "NL", "0.21"},
		{"categoria C mayúscula en BE", "CAT-01", "BE", "0.21"},
		{"reducida en BE", "f-voeding", "BE", "0.06"},
		{"reducida en be minúsculas", "f-voeding", "be", "0.06"},
		{"reducida en NL", "f-voeding", "NL", "0.09"},
		{"reducida en país desconocido", "x", "DE", "0.09"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tax.SelectTaxRate(tc.category, tc.country)
			require.NoError(t, err)
			assert.True(t, dec(tc.want).Equal(got), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestSelectTaxRate_Idempotente(t *testing.T) {
	a, errA := tax.SelectTaxRate("boeken", "BE")
	b, errB := tax.SelectTaxRate("boeken", "BE")
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.True(t, a.Equal(b))
}

func TestSelectTaxRate_CategoriaVacia_ErrorDeValidacion(t *testing.T) {
	_, err := tax.SelectTaxRate("", "NL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tax.ErrEmptyCategory))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeLineBreakdown
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeLineBreakdown_Escenario21(t *testing.T) {
	b := tax.ComputeLineBreakdown(dec("21.00"), tax.StandardRate, 2)

	assert.Equal(t, "17.36", b.TaxExclusiveUnitPrice.StringFixed(2))
	assert.Equal(t, "3.64", b.TaxAmountPerUnit.StringFixed(2))
	assert.Equal(t, "34.72", b.SubtotalExclusiveTax.String(),
		"2 × 17.36: el subtotal cuadra con el precio unitario impreso")
	assert.Equal(t, "7.28", b.LineTaxAmount.String())
	assert.Equal(t, "21%", tax.PercentLabel(b.Rate))
}

func TestComputeLineBreakdown_ExclMasImpuestoIgualPrecio(t *testing.T) {
	prices := []string{"0", "0.01", "1", "9.99", "21.00", "123.45", "999999.99"}
	rates := []decimal.Decimal{decimal.Zero, tax.SecondaryReducedRate, tax.ReducedRate, tax.StandardRate, dec("0.999")}
	for _, p := range prices {
		for _, r := range rates {
			b := tax.ComputeLineBreakdown(dec(p), r, 1)
			sum := b.TaxExclusiveUnitPrice.Add(b.TaxAmountPerUnit)
			assert.True(t, sum.Equal(dec(p)), "P=%s r=%s: excl+tax=%s", p, r, sum)
			assert.True(t, b.TaxExclusiveUnitPrice.Equal(b.TaxExclusiveUnitPrice.Round(2)), "excl en céntimos")
		}
	}
}

func TestComputeLineBreakdown_PrecioCero(t *testing.T) {
	b := tax.ComputeLineBreakdown(decimal.Zero, tax.StandardRate, 3)
	assert.True(t, b.TaxExclusiveUnitPrice.IsZero())
	assert.True(t, b.TaxAmountPerUnit.IsZero())
	assert.True(t, b.SubtotalExclusiveTax.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Totals
// ──────────────────────────────────────────────────────────────────────────────

func TestTotals_InclusivoEsBaseMasImpuesto(t *testing.T) {
	var totals tax.Totals
	lines := []tax.LineBreakdown{
		tax.ComputeLineBreakdown(dec("21.00"), tax.StandardRate, 2),
		tax.ComputeLineBreakdown(dec("10.90"), tax.ReducedRate, 1),
		tax.ComputeLineBreakdown(dec("3.18"), tax.SecondaryReducedRate, 7),
	}
	for _, l := range lines {
		totals = totals.Accumulate(l)
	}
	assert.True(t, totals.TotalInclusiveTax().Equal(totals.TotalExclusiveTax.Add(totals.TotalTaxAmount)))
	// 2×21.00 + 10.90 + 7×3.18 = 75.16
	assert.Equal(t, "75.16", totals.TotalInclusiveTax().StringFixed(2))
}

func TestTotals_OrdenIndependiente(t *testing.T) {
	a := tax.ComputeLineBreakdown(dec("21.00"), tax.StandardRate, 2)
	b := tax.ComputeLineBreakdown(dec("5.45"), tax.ReducedRate, 4)

	ab := tax.Totals{}.Accumulate(a).Accumulate(b)
	ba := tax.Totals{}.Accumulate(b).Accumulate(a)
	assert.True(t, ab.TotalExclusiveTax.Equal(ba.TotalExclusiveTax))
	assert.True(t, ab.TotalTaxAmount.Equal(ba.TotalTaxAmount))
}

func TestPercentLabel(t *testing.T) {
	assert.Equal(t, "21%", tax.PercentLabel(tax.StandardRate))
	assert.Equal(t, "9%", tax.PercentLabel(tax.ReducedRate))
	assert.Equal(t, "6%", tax.PercentLabel(tax.SecondaryReducedRate))
}
