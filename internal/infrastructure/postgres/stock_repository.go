package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo libro de inventario sobre PostgreSQL (usable con pool o tx).
// Solo inserta y marca anulados; nunca borra ni modifica cantidades.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const movementColumns = `id, document_id, product_id, qty_delta_kg, movement_date, cancelled_flag, created_at`

// CreateMovement agrega un movimiento activo al libro.
func (r *StockRepo) CreateMovement(ctx context.Context, m *entity.InventoryMovement) (int64, error) {
	if m.DocumentID <= 0 || m.ProductID <= 0 {
		return 0, fmt.Errorf("crear movimiento: documento %d, producto %d: %w", m.DocumentID, m.ProductID, domain.ErrValidation)
	}
	query := `
		INSERT INTO inventory_movements (document_id, product_id, qty_delta_kg, movement_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		m.DocumentID, m.ProductID, m.QtyDeltaKg, entity.DateOnly(m.MovementDate),
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("crear movimiento: documento %d, producto %d: %w", m.DocumentID, m.ProductID, domain.ErrNotFound)
		}
		return 0, storageErr("insert movement", err)
	}
	m.Cancelled = false
	return m.ID, nil
}

// FindMovementByID devuelve (nil, nil) si no existe.
func (r *StockRepo) FindMovementByID(ctx context.Context, id int64) (*entity.InventoryMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get movement", err)
	}
	return m, nil
}

// FindMovementsByDocument historial del documento (incluye anulados).
func (r *StockRepo) FindMovementsByDocument(ctx context.Context, documentID int64) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, "list movements by document",
		`SELECT `+movementColumns+` FROM inventory_movements WHERE document_id = $1 ORDER BY id`, documentID)
}

// FindMovementsByProduct historial del producto (incluye anulados).
func (r *StockRepo) FindMovementsByProduct(ctx context.Context, productID int64) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, "list movements by product",
		`SELECT `+movementColumns+` FROM inventory_movements WHERE product_id = $1 ORDER BY id`, productID)
}

func (r *StockRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return list, nil
}

// CancelMovement marca el movimiento como anulado; false si ya lo estaba o no existe.
func (r *StockRepo) CancelMovement(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_movements SET cancelled_flag = TRUE WHERE id = $1 AND NOT cancelled_flag`, id)
	if err != nil {
		return false, storageErr("cancel movement", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetStockBalance suma de deltas activos del producto, siempre recalculada.
func (r *StockRepo) GetStockBalance(ctx context.Context, productID int64) (float64, error) {
	var balance float64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(qty_delta_kg), 0)
		FROM inventory_movements
		WHERE product_id = $1 AND NOT cancelled_flag`, productID).Scan(&balance)
	if err != nil {
		return 0, storageErr("stock balance", err)
	}
	return balance, nil
}

// GetAllStockBalances un saldo por producto del catálogo (0 si no tiene movimientos).
func (r *StockRepo) GetAllStockBalances(ctx context.Context) ([]*entity.StockBalance, error) {
	return r.balances(ctx, false)
}

// GetActiveStockBalances como GetAllStockBalances pero solo productos activos.
func (r *StockRepo) GetActiveStockBalances(ctx context.Context) ([]*entity.StockBalance, error) {
	return r.balances(ctx, true)
}

func (r *StockRepo) balances(ctx context.Context, activeOnly bool) ([]*entity.StockBalance, error) {
	query := `
		SELECT p.id, p.name, COALESCE(SUM(m.qty_delta_kg), 0) AS balance, p.unit
		FROM products p
		LEFT JOIN inventory_movements m ON m.product_id = p.id AND NOT m.cancelled_flag
		WHERE (NOT $1::boolean OR p.is_active)
		GROUP BY p.id, p.name, p.unit
		ORDER BY p.name, p.id`
	rows, err := r.q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, storageErr("stock balances", err)
	}
	defer rows.Close()

	var list []*entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ProductID, &b.ProductName, &b.BalanceKg, &b.Unit); err != nil {
			return nil, storageErr("scan stock balance", err)
		}
		list = append(list, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("stock balances", err)
	}
	return list, nil
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	err := row.Scan(&m.ID, &m.DocumentID, &m.ProductID, &m.QtyDeltaKg, &m.MovementDate, &m.Cancelled, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.MovementDate = entity.DateOnly(m.MovementDate)
	return &m, nil
}
