package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/money"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.DocumentLineRepository = (*DocumentLineRepo)(nil)

// DocumentLineRepo líneas de documento sobre PostgreSQL.
type DocumentLineRepo struct {
	q Querier
}

// NewDocumentLineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentLineRepository(q Querier) *DocumentLineRepo {
	return &DocumentLineRepo{q: q}
}

// Create inserta la línea y devuelve su ID.
func (r *DocumentLineRepo) Create(ctx context.Context, line *entity.DocumentLine) (int64, error) {
	if line.DocumentID <= 0 || line.ProductID <= 0 {
		return 0, fmt.Errorf("crear línea: documento %d, producto %d: %w", line.DocumentID, line.ProductID, domain.ErrValidation)
	}
	query := `
		INSERT INTO document_lines (document_id, product_id, qty_kg, price, line_sum)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		line.DocumentID, line.ProductID, line.QtyKg, money.Format(line.Price), money.Format(line.LineSum),
	).Scan(&line.ID, &line.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("crear línea: documento %d, producto %d: %w", line.DocumentID, line.ProductID, domain.ErrNotFound)
		}
		return 0, storageErr("insert document line", err)
	}
	return line.ID, nil
}

// FindByID devuelve (nil, nil) si no existe.
func (r *DocumentLineRepo) FindByID(ctx context.Context, id int64) (*entity.DocumentLine, error) {
	query := `
		SELECT id, document_id, product_id, qty_kg, price, line_sum, created_at
		FROM document_lines WHERE id = $1`
	l, err := scanLine(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get document line", err)
	}
	return l, nil
}

// FindByDocument líneas del documento en orden de inserción.
func (r *DocumentLineRepo) FindByDocument(ctx context.Context, documentID int64) ([]*entity.DocumentLine, error) {
	query := `
		SELECT id, document_id, product_id, qty_kg, price, line_sum, created_at
		FROM document_lines WHERE document_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, storageErr("list document lines", err)
	}
	defer rows.Close()

	var list []*entity.DocumentLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, storageErr("scan document line", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list document lines", err)
	}
	return list, nil
}

// DeleteByDocument borra las líneas y devuelve cuántas.
func (r *DocumentLineRepo) DeleteByDocument(ctx context.Context, documentID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, storageErr("delete document lines", err)
	}
	return tag.RowsAffected(), nil
}

// Update reescribe producto, cantidad, precio e importe.
func (r *DocumentLineRepo) Update(ctx context.Context, line *entity.DocumentLine) (bool, error) {
	if line.ID <= 0 || line.ProductID <= 0 {
		return false, fmt.Errorf("actualizar línea %d: %w", line.ID, domain.ErrValidation)
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE document_lines SET product_id = $2, qty_kg = $3, price = $4, line_sum = $5
		WHERE id = $1`,
		line.ID, line.ProductID, line.QtyKg, money.Format(line.Price), money.Format(line.LineSum))
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("actualizar línea %d: producto %d: %w", line.ID, line.ProductID, domain.ErrNotFound)
		}
		return false, storageErr("update document line", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SumByDocument suma exacta de los importes de línea (NUMERIC -> decimal vía pgx-shopspring-decimal).
func (r *DocumentLineRepo) SumByDocument(ctx context.Context, documentID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(NULLIF(replace(btrim(line_sum), ',', '.'), '')::numeric), 0)
		FROM document_lines WHERE document_id = $1`, documentID).Scan(&total)
	if err != nil {
		return decimal.Zero, storageErr("sum document lines", err)
	}
	return total, nil
}

func scanLine(row pgx.Row) (*entity.DocumentLine, error) {
	var (
		l            entity.DocumentLine
		price, total string
	)
	if err := row.Scan(&l.ID, &l.DocumentID, &l.ProductID, &l.QtyKg, &price, &total, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Price = money.Parse(price)
	l.LineSum = money.Parse(total)
	return &l, nil
}
