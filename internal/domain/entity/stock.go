package entity

// StockBalance saldo derivado de un producto: suma de movimientos activos.
// Nunca se persiste; se recalcula siempre desde el libro.
type StockBalance struct {
	ProductID   int64
	ProductName string
	BalanceKg   float64
	Unit        string
}
