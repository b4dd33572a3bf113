package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/money"
)

// WriteOffInput baja de mercancía de un producto.
type WriteOffInput struct {
	ProductID int64
	QtyKg     float64
	Reason    string
	Date      time.Time // cero = hoy
}

// WriteOff da de baja mercancía creando un documento "writeoff" de una línea y
// contabilizándolo con el mismo motor (verificación de saldo activo incluida),
// todo en una transacción. Devuelve el ID del documento creado.
func (s *Service) WriteOff(ctx context.Context, in WriteOffInput) (int64, error) {
	if in.ProductID <= 0 || in.QtyKg <= 0 {
		return 0, fmt.Errorf("baja: producto %d, cantidad %.3f: %w", in.ProductID, in.QtyKg, domain.ErrValidation)
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	date = entity.DateOnly(date)

	var docID int64
	err := s.inTx(ctx, func(r txRepos) error {
		product, err := r.products.FindByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("baja: producto %d: %w", in.ProductID, domain.ErrNotFound)
		}

		lineSum := money.LineSum(product.Price, in.QtyKg)
		doc := &entity.Document{
			Type:        entity.DocTypeWriteOff,
			Number:      writeOffNumber(date),
			Date:        date,
			Status:      entity.StatusDraft,
			TotalAmount: lineSum,
			Notes:       strings.TrimSpace(in.Reason),
		}
		docID, err = r.docs.Create(ctx, doc)
		if err != nil {
			return err
		}
		line := &entity.DocumentLine{
			DocumentID: docID,
			ProductID:  product.ID,
			QtyKg:      in.QtyKg,
			Price:      product.Price,
			LineSum:    lineSum,
		}
		if _, err := r.lines.Create(ctx, line); err != nil {
			return err
		}

		locked, err := lockDocument(ctx, r.docs, docID)
		if err != nil {
			return err
		}
		_, err = s.post(ctx, r, locked)
		return err
	})
	if err != nil {
		s.log.Warn().Err(err).Int64("product_id", in.ProductID).Float64("qty_kg", in.QtyKg).Msg("baja rechazada")
		return 0, err
	}

	s.log.Info().Int64("document_id", docID).Int64("product_id", in.ProductID).Float64("qty_kg", in.QtyKg).Msg("baja registrada")
	return docID, nil
}

// writeOffNumber WRITEOFF-AAAAMMDD-<8 hex>.
func writeOffNumber(date time.Time) string {
	return fmt.Sprintf("WRITEOFF-%s-%s", date.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}
