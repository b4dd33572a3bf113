package dto

// MovementResponse fila del libro de inventario.
type MovementResponse struct {
	ID           int64   `json:"id"`
	DocumentID   int64   `json:"document_id"`
	ProductID    int64   `json:"product_id"`
	QtyDeltaKg   float64 `json:"qty_delta_kg"`
	MovementDate string  `json:"movement_date"`
	Cancelled    bool    `json:"cancelled"`
}

// StockBalanceResponse saldo activo de un producto.
type StockBalanceResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	BalanceKg   float64 `json:"balance_kg"`
	Unit        string  `json:"unit,omitempty"`
}

// WriteOffRequest body para POST /api/stock/writeoff.
type WriteOffRequest struct {
	ProductID int64   `json:"product_id"`
	QtyKg     float64 `json:"qty_kg"`
	Reason    string  `json:"reason"`
	Date      string  `json:"date,omitempty"` // YYYY-MM-DD; vacío = hoy
}

// WriteOffResponse documento de baja creado y contabilizado.
type WriteOffResponse struct {
	DocumentID int64  `json:"document_id"`
	Number     string `json:"number"`
	Message    string `json:"message"`
}
