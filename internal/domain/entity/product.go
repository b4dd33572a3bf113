package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultUnit unidad por defecto del catálogo.
const DefaultUnit = "кг"

// Product artículo del catálogo. El motor de inventario solo lo lee
// (nombre y unidad para saldos, bandera Active para filtrar).
type Product struct {
	ID        int64
	Name      string
	Unit      string
	Price     decimal.Decimal // precio de referencia
	Sort      int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Valid el producto está persistido y tiene nombre.
func (p *Product) Valid() bool {
	return p != nil && p.ID > 0 && strings.TrimSpace(p.Name) != ""
}
