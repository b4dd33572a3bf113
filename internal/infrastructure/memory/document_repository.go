package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos en memoria.
type DocumentRepo struct {
	s    *Store
	inTx bool
}

// Create inserta el documento; el número debe ser único por tipo entre no borrados.
func (r *DocumentRepo) Create(_ context.Context, doc *entity.Document) (int64, error) {
	defer r.s.lock(r.inTx)()
	number := strings.TrimSpace(doc.Number)
	if number == "" {
		return 0, fmt.Errorf("crear documento: número vacío: %w", domain.ErrValidation)
	}
	if r.numberTaken(number, doc.Type, 0) {
		return 0, fmt.Errorf("crear documento %s/%s: %w", doc.Type, number, domain.ErrDuplicate)
	}

	st := r.s.st
	d := *doc
	d.ID = st.newID()
	d.Number = number
	d.Notes = strings.TrimSpace(d.Notes)
	d.Date = entity.DateOnly(d.Date)
	if d.Status == "" {
		d.Status = entity.StatusDraft
	}
	d.CreatedAt = r.s.now()
	d.UpdatedAt = d.CreatedAt
	st.docs[d.ID] = d
	doc.ID = d.ID
	return d.ID, nil
}

func (r *DocumentRepo) numberTaken(number string, t entity.DocType, exceptID int64) bool {
	for _, d := range r.s.st.docs {
		if d.ID != exceptID && !d.Deleted && d.Type == t && d.Number == number {
			return true
		}
	}
	return false
}

// FindByID devuelve (nil, nil) si no existe.
func (r *DocumentRepo) FindByID(_ context.Context, id int64) (*entity.Document, error) {
	defer r.s.lock(r.inTx)()
	d, ok := r.s.st.docs[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// FindByIDForUpdate en memoria el bloqueo lo da la serialización de Run.
func (r *DocumentRepo) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Document, error) {
	return r.FindByID(ctx, id)
}

// FindByNumber busca entre documentos no borrados.
func (r *DocumentRepo) FindByNumber(_ context.Context, number string, docType entity.DocType) (*entity.Document, error) {
	defer r.s.lock(r.inTx)()
	number = strings.TrimSpace(number)
	for _, d := range r.s.st.docs {
		if !d.Deleted && d.Type == docType && d.Number == number {
			return &d, nil
		}
	}
	return nil, nil
}

// FindAll ordenados por fecha e ID descendentes.
func (r *DocumentRepo) FindAll(_ context.Context) ([]*entity.Document, error) {
	defer r.s.lock(r.inTx)()
	return r.filter(func(*entity.Document) bool { return true }), nil
}

// FindByStatus documentos con el estado dado.
func (r *DocumentRepo) FindByStatus(_ context.Context, status entity.DocStatus) ([]*entity.Document, error) {
	defer r.s.lock(r.inTx)()
	return r.filter(func(d *entity.Document) bool { return d.Status == status }), nil
}

// FindByDateRange rango cerrado [from, to] por fecha calendario.
func (r *DocumentRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]*entity.Document, error) {
	defer r.s.lock(r.inTx)()
	from, to = entity.DateOnly(from), entity.DateOnly(to)
	return r.filter(func(d *entity.Document) bool {
		return !d.Date.Before(from) && !d.Date.After(to)
	}), nil
}

func (r *DocumentRepo) filter(keep func(*entity.Document) bool) []*entity.Document {
	var list []*entity.Document
	for _, d := range r.s.st.docs {
		d := d
		if d.Deleted || !keep(&d) {
			continue
		}
		list = append(list, &d)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

// Update reescribe los campos editables.
func (r *DocumentRepo) Update(_ context.Context, doc *entity.Document) (bool, error) {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.st.docs[doc.ID]
	if !ok || doc.ID <= 0 {
		return false, nil
	}
	number := strings.TrimSpace(doc.Number)
	if number == "" {
		return false, fmt.Errorf("actualizar documento %d: número vacío: %w", doc.ID, domain.ErrValidation)
	}
	if r.numberTaken(number, doc.Type, doc.ID) {
		return false, fmt.Errorf("actualizar documento %d: %w", doc.ID, domain.ErrDuplicate)
	}
	cur.Type = doc.Type
	cur.Number = number
	cur.Date = entity.DateOnly(doc.Date)
	cur.Status = doc.Status
	cur.SenderID = doc.SenderID
	cur.ReceiverID = doc.ReceiverID
	cur.TotalAmount = doc.TotalAmount
	cur.Notes = strings.TrimSpace(doc.Notes)
	cur.UpdatedAt = r.s.now()
	r.s.st.docs[doc.ID] = cur
	return true, nil
}

// UpdateStatus cambia el estado solo si el actual coincide con from.
func (r *DocumentRepo) UpdateStatus(_ context.Context, id int64, from, to entity.DocStatus) (bool, error) {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.st.docs[id]
	if !ok || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.UpdatedAt = r.s.now()
	r.s.st.docs[id] = cur
	return true, nil
}

// UpdateTotal fija el importe total.
func (r *DocumentRepo) UpdateTotal(_ context.Context, id int64, total decimal.Decimal) (bool, error) {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.st.docs[id]
	if !ok {
		return false, nil
	}
	cur.TotalAmount = total
	cur.UpdatedAt = r.s.now()
	r.s.st.docs[id] = cur
	return true, nil
}

// Cancel pone el estado CANCELLED sin validar la transición.
func (r *DocumentRepo) Cancel(_ context.Context, id int64) (bool, error) {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.st.docs[id]
	if !ok {
		return false, nil
	}
	cur.Status = entity.StatusCancelled
	cur.UpdatedAt = r.s.now()
	r.s.st.docs[id] = cur
	return true, nil
}

// MarkDeleted borrado lógico; sufija el número para liberarlo.
func (r *DocumentRepo) MarkDeleted(_ context.Context, id int64) (bool, error) {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.st.docs[id]
	if !ok || cur.Deleted {
		return false, nil
	}
	cur.Deleted = true
	cur.Number = fmt.Sprintf("%s [del %d]", cur.Number, cur.ID)
	cur.UpdatedAt = r.s.now()
	r.s.st.docs[id] = cur
	return true, nil
}

// Exists indica si hay un documento no borrado con ese ID.
func (r *DocumentRepo) Exists(_ context.Context, id int64) (bool, error) {
	defer r.s.lock(r.inTx)()
	d, ok := r.s.st.docs[id]
	return ok && !d.Deleted, nil
}
