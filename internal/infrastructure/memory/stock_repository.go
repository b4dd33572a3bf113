package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo libro de inventario en memoria.
type StockRepo struct {
	s    *Store
	inTx bool
}

// CreateMovement agrega un asiento; solo valida las referencias.
func (r *StockRepo) CreateMovement(_ context.Context, m *entity.InventoryMovement) (int64, error) {
	defer r.s.lock(r.inTx)()
	if m.DocumentID <= 0 || m.ProductID <= 0 {
		return 0, fmt.Errorf("crear movimiento: documento %d, producto %d: %w", m.DocumentID, m.ProductID, domain.ErrValidation)
	}
	st := r.s.st
	mv := *m
	mv.ID = st.newID()
	mv.MovementDate = entity.DateOnly(mv.MovementDate)
	mv.CreatedAt = r.s.now()
	st.movements[mv.ID] = mv
	m.ID = mv.ID
	return mv.ID, nil
}

// FindMovementByID devuelve (nil, nil) si no existe.
func (r *StockRepo) FindMovementByID(_ context.Context, id int64) (*entity.InventoryMovement, error) {
	defer r.s.lock(r.inTx)()
	m, ok := r.s.st.movements[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// FindMovementsByDocument incluye anulados, ordenados por ID.
func (r *StockRepo) FindMovementsByDocument(_ context.Context, documentID int64) ([]*entity.InventoryMovement, error) {
	defer r.s.lock(r.inTx)()
	return r.movementsWhere(func(m *entity.InventoryMovement) bool { return m.DocumentID == documentID }), nil
}

// FindMovementsByProduct incluye anulados, ordenados por ID.
func (r *StockRepo) FindMovementsByProduct(_ context.Context, productID int64) ([]*entity.InventoryMovement, error) {
	defer r.s.lock(r.inTx)()
	return r.movementsWhere(func(m *entity.InventoryMovement) bool { return m.ProductID == productID }), nil
}

func (r *StockRepo) movementsWhere(keep func(*entity.InventoryMovement) bool) []*entity.InventoryMovement {
	var list []*entity.InventoryMovement
	for _, m := range r.s.st.movements {
		m := m
		if keep(&m) {
			list = append(list, &m)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// CancelMovement false -> true; un movimiento ya anulado no cuenta como fila afectada.
func (r *StockRepo) CancelMovement(_ context.Context, id int64) (bool, error) {
	defer r.s.lock(r.inTx)()
	m, ok := r.s.st.movements[id]
	if !ok || m.Cancelled {
		return false, nil
	}
	m.Cancelled = true
	r.s.st.movements[id] = m
	return true, nil
}

// GetStockBalance suma de movimientos activos del producto.
func (r *StockRepo) GetStockBalance(_ context.Context, productID int64) (float64, error) {
	defer r.s.lock(r.inTx)()
	return r.balance(productID), nil
}

func (r *StockRepo) balance(productID int64) float64 {
	var total float64
	for _, m := range r.s.st.movements {
		if m.ProductID == productID && !m.Cancelled {
			total += m.QtyDeltaKg
		}
	}
	return total
}

// GetAllStockBalances un saldo por producto del catálogo (0 si no tiene movimientos).
func (r *StockRepo) GetAllStockBalances(_ context.Context) ([]*entity.StockBalance, error) {
	defer r.s.lock(r.inTx)()
	return r.balances(false), nil
}

// GetActiveStockBalances igual que GetAllStockBalances pero solo productos activos.
func (r *StockRepo) GetActiveStockBalances(_ context.Context) ([]*entity.StockBalance, error) {
	defer r.s.lock(r.inTx)()
	return r.balances(true), nil
}

func (r *StockRepo) balances(activeOnly bool) []*entity.StockBalance {
	sums := make(map[int64]float64)
	for _, m := range r.s.st.movements {
		if !m.Cancelled {
			sums[m.ProductID] += m.QtyDeltaKg
		}
	}
	list := make([]*entity.StockBalance, 0, len(r.s.st.products))
	for _, p := range r.s.st.products {
		if activeOnly && !p.Active {
			continue
		}
		list = append(list, &entity.StockBalance{
			ProductID:   p.ID,
			ProductName: p.Name,
			BalanceKg:   sums[p.ID],
			Unit:        p.Unit,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].ProductName != list[j].ProductName {
			return list[i].ProductName < list[j].ProductName
		}
		return list[i].ProductID < list[j].ProductID
	})
	return list
}
