// Package money agrupa la aritmética decimal exacta para precios e importes.
// Las cantidades en kg siguen siendo float64; solo el dinero pasa por aquí.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Scale número de decimales con el que se persisten los importes.
const Scale = 2

// Parse convierte texto a decimal. Acepta coma como separador decimal;
// un texto vacío o no numérico se interpreta como cero.
func Parse(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format devuelve el importe con Scale decimales fijos, tal como se guarda en la BD.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// LineSum calcula precio × cantidad en kg, redondeado a Scale.
// La cantidad se convierte desde su representación decimal más corta para no
// arrastrar el error binario del float64 al importe.
func LineSum(price decimal.Decimal, qtyKg float64) decimal.Decimal {
	return price.Mul(decimal.NewFromFloat(qtyKg)).Round(Scale)
}

// Sum suma importes de forma exacta.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
