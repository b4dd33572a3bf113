package entity

import "time"

// InventoryMovement asiento del libro de inventario (append-only).
// Una vez escrito solo cambia Cancelled, y solo de false a true (storno por bandera).
type InventoryMovement struct {
	ID           int64
	DocumentID   int64
	ProductID    int64
	QtyDeltaKg   float64 // positivo entrada, negativo salida
	MovementDate time.Time
	Cancelled    bool
	CreatedAt    time.Time
}

// Active indica si el movimiento cuenta para el saldo.
func (m *InventoryMovement) Active() bool { return !m.Cancelled }
