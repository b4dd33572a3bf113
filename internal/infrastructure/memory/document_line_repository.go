package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.DocumentLineRepository = (*DocumentLineRepo)(nil)

// DocumentLineRepo líneas de documento en memoria.
type DocumentLineRepo struct {
	s    *Store
	inTx bool
}

// Create inserta la línea; exige documento y producto.
func (r *DocumentLineRepo) Create(_ context.Context, line *entity.DocumentLine) (int64, error) {
	defer r.s.lock(r.inTx)()
	if line.DocumentID <= 0 || line.ProductID <= 0 {
		return 0, fmt.Errorf("crear línea: documento %d, producto %d: %w", line.DocumentID, line.ProductID, domain.ErrValidation)
	}
	st := r.s.st
	if _, ok := st.docs[line.DocumentID]; !ok {
		return 0, fmt.Errorf("crear línea: documento %d: %w", line.DocumentID, domain.ErrNotFound)
	}
	if _, ok := st.products[line.ProductID]; !ok {
		return 0, fmt.Errorf("crear línea: producto %d: %w", line.ProductID, domain.ErrNotFound)
	}
	l := *line
	l.ID = st.newID()
	l.CreatedAt = r.s.now()
	st.lines[l.ID] = l
	line.ID = l.ID
	return l.ID, nil
}

// FindByID devuelve (nil, nil) si no existe.
func (r *DocumentLineRepo) FindByID(_ context.Context, id int64) (*entity.DocumentLine, error) {
	defer r.s.lock(r.inTx)()
	l, ok := r.s.st.lines[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// FindByDocument ordenadas por ID.
func (r *DocumentLineRepo) FindByDocument(_ context.Context, documentID int64) ([]*entity.DocumentLine, error) {
	defer r.s.lock(r.inTx)()
	return r.byDocument(documentID), nil
}

func (r *DocumentLineRepo) byDocument(documentID int64) []*entity.DocumentLine {
	var list []*entity.DocumentLine
	for _, l := range r.s.st.lines {
		l := l
		if l.DocumentID == documentID {
			list = append(list, &l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// DeleteByDocument elimina las líneas y devuelve cuántas borró.
func (r *DocumentLineRepo) DeleteByDocument(_ context.Context, documentID int64) (int64, error) {
	defer r.s.lock(r.inTx)()
	var n int64
	for id, l := range r.s.st.lines {
		if l.DocumentID == documentID {
			delete(r.s.st.lines, id)
			n++
		}
	}
	return n, nil
}

// Update reescribe producto, cantidad, precio e importe.
func (r *DocumentLineRepo) Update(_ context.Context, line *entity.DocumentLine) (bool, error) {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.st.lines[line.ID]
	if !ok {
		return false, nil
	}
	cur.ProductID = line.ProductID
	cur.QtyKg = line.QtyKg
	cur.Price = line.Price
	cur.LineSum = line.LineSum
	r.s.st.lines[line.ID] = cur
	return true, nil
}

// SumByDocument suma exacta de importes.
func (r *DocumentLineRepo) SumByDocument(_ context.Context, documentID int64) (decimal.Decimal, error) {
	defer r.s.lock(r.inTx)()
	total := decimal.Zero
	for _, l := range r.byDocument(documentID) {
		total = total.Add(l.LineSum)
	}
	return total, nil
}
