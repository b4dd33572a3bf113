package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/money"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository sobre PostgreSQL (usable con pool o tx).
// Los importes se guardan como TEXT con dos decimales.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador de documentos. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `id, doc_type, number, doc_date, status, sender_id, receiver_id,
	total_amount, notes, is_deleted, created_at, updated_at`

// Create inserta el documento (DRAFT si no trae estado) y devuelve su ID.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) (int64, error) {
	number := strings.TrimSpace(doc.Number)
	if number == "" {
		return 0, fmt.Errorf("crear documento: número vacío: %w", domain.ErrValidation)
	}
	status := doc.Status
	if status == "" {
		status = entity.StatusDraft
	}

	query := `
		INSERT INTO documents (doc_type, number, doc_date, status, sender_id, receiver_id, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		string(doc.Type), number, entity.DateOnly(doc.Date), string(status), doc.SenderID, doc.ReceiverID,
		money.Format(doc.TotalAmount), strings.TrimSpace(doc.Notes),
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("crear documento %s/%s: %w", doc.Type, number, domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("crear documento %s/%s: contraparte inexistente: %w", doc.Type, number, domain.ErrNotFound)
		}
		return 0, storageErr("insert document", err)
	}
	doc.Number = number
	doc.Status = status
	return doc.ID, nil
}

// FindByID obtiene un documento por ID (incluye borrados; el llamador decide).
func (r *DocumentRepo) FindByID(ctx context.Context, id int64) (*entity.Document, error) {
	return r.findOne(ctx, "get document", `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// FindByIDForUpdate como FindByID pero bloquea la fila hasta el fin de la transacción.
func (r *DocumentRepo) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Document, error) {
	return r.findOne(ctx, "get document for update", `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id)
}

// FindByNumber busca entre los no borrados.
func (r *DocumentRepo) FindByNumber(ctx context.Context, number string, docType entity.DocType) (*entity.Document, error) {
	return r.findOne(ctx, "get document by number",
		`SELECT `+documentColumns+` FROM documents WHERE number = $1 AND doc_type = $2 AND NOT is_deleted`,
		strings.TrimSpace(number), string(docType))
}

func (r *DocumentRepo) findOne(ctx context.Context, op, query string, args ...any) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(op, err)
	}
	return doc, nil
}

// FindAll documentos no borrados, del más reciente al más antiguo.
func (r *DocumentRepo) FindAll(ctx context.Context) ([]*entity.Document, error) {
	return r.list(ctx, "list documents", `
		SELECT `+documentColumns+` FROM documents
		WHERE NOT is_deleted
		ORDER BY doc_date DESC, id DESC`)
}

// FindByStatus documentos no borrados en el estado indicado.
func (r *DocumentRepo) FindByStatus(ctx context.Context, status entity.DocStatus) ([]*entity.Document, error) {
	return r.list(ctx, "list documents by status", `
		SELECT `+documentColumns+` FROM documents
		WHERE status = $1 AND NOT is_deleted
		ORDER BY doc_date DESC, id DESC`, string(status))
}

// FindByDateRange rango cerrado [from, to] por fecha calendario.
func (r *DocumentRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Document, error) {
	return r.list(ctx, "list documents by date", `
		SELECT `+documentColumns+` FROM documents
		WHERE doc_date BETWEEN $1 AND $2 AND NOT is_deleted
		ORDER BY doc_date DESC, id DESC`, entity.DateOnly(from), entity.DateOnly(to))
}

func (r *DocumentRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Document, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var list []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		list = append(list, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return list, nil
}

// Update reescribe los campos editables de la cabecera (no el estado).
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) (bool, error) {
	number := strings.TrimSpace(doc.Number)
	if doc.ID <= 0 || number == "" {
		return false, fmt.Errorf("actualizar documento %d: %w", doc.ID, domain.ErrValidation)
	}
	query := `
		UPDATE documents
		SET doc_type = $2, number = $3, doc_date = $4, sender_id = $5, receiver_id = $6,
		    total_amount = $7, notes = $8, updated_at = now()
		WHERE id = $1 AND NOT is_deleted`
	tag, err := r.q.Exec(ctx, query,
		doc.ID, string(doc.Type), number, entity.DateOnly(doc.Date), doc.SenderID, doc.ReceiverID,
		money.Format(doc.TotalAmount), strings.TrimSpace(doc.Notes),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("actualizar documento %d: %w", doc.ID, domain.ErrDuplicate)
		}
		return false, storageErr("update document", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus cambia el estado solo si el actual es from; false si no afectó filas.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id int64, from, to entity.DocStatus) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE documents SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return false, storageErr("update document status", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateTotal guarda el importe total.
func (r *DocumentRepo) UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE documents SET total_amount = $2, updated_at = now() WHERE id = $1`,
		id, money.Format(total))
	if err != nil {
		return false, storageErr("update document total", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel pone status=CANCELLED sin mirar el estado actual; la transición la valida el servicio.
func (r *DocumentRepo) Cancel(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`,
		id, entity.StatusCancelled.String())
	if err != nil {
		return false, storageErr("cancel document", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkDeleted borrado lógico; el número recibe el sufijo " [del <id>]" para liberarlo.
func (r *DocumentRepo) MarkDeleted(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE documents
		SET is_deleted = TRUE, number = number || ' [del ' || id || ']', updated_at = now()
		WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return false, storageErr("delete document", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists true si existe y no está borrado.
func (r *DocumentRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1 AND NOT is_deleted)`, id).Scan(&ok)
	if err != nil {
		return false, storageErr("document exists", err)
	}
	return ok, nil
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var (
		d           entity.Document
		docType, st string
		total       string
	)
	err := row.Scan(
		&d.ID, &docType, &d.Number, &d.Date, &st, &d.SenderID, &d.ReceiverID,
		&total, &d.Notes, &d.Deleted, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if d.Type, err = entity.ParseDocType(docType); err != nil {
		return nil, fmt.Errorf("documento %d: %w", d.ID, err)
	}
	if d.Status, err = entity.ParseDocStatus(st); err != nil {
		return nil, fmt.Errorf("documento %d: %w", d.ID, err)
	}
	d.TotalAmount = money.Parse(total)
	d.Date = entity.DateOnly(d.Date)
	return &d, nil
}
