package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// StockRepository puerto del libro de inventario (append + bandera de anulación).
// Los métodos de saldo solo cuentan movimientos activos; los anulados solo se ven
// en las consultas de historial (FindMovements*).
type StockRepository interface {
	// CreateMovement exige DocumentID>0 y ProductID>0; no hace otra validación de negocio.
	CreateMovement(ctx context.Context, m *entity.InventoryMovement) (int64, error)
	FindMovementByID(ctx context.Context, id int64) (*entity.InventoryMovement, error)
	FindMovementsByDocument(ctx context.Context, documentID int64) ([]*entity.InventoryMovement, error)
	FindMovementsByProduct(ctx context.Context, productID int64) ([]*entity.InventoryMovement, error)
	// CancelMovement marca el movimiento como anulado. Devuelve false si ya lo estaba o no existe.
	CancelMovement(ctx context.Context, id int64) (bool, error)
	GetStockBalance(ctx context.Context, productID int64) (float64, error)
	GetAllStockBalances(ctx context.Context) ([]*entity.StockBalance, error)
	GetActiveStockBalances(ctx context.Context) ([]*entity.StockBalance, error)
}
