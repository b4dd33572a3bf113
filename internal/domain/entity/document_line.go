package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLine línea de un documento. El motor de contabilización la lee, nunca la modifica.
type DocumentLine struct {
	ID         int64
	DocumentID int64
	ProductID  int64
	QtyKg      float64         // medición física, tolera float
	Price      decimal.Decimal // precio por kg
	LineSum    decimal.Decimal // esperado: Price × QtyKg
	CreatedAt  time.Time
}

// Valid la línea está persistida y referencia documento y producto.
func (l *DocumentLine) Valid() bool {
	return l != nil && l.ID > 0 && l.DocumentID > 0 && l.ProductID > 0
}
