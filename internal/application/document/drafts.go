package document

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RecalculateTotal recalcula TotalAmount como suma exacta de los importes de línea.
// Solo sobre borradores: las líneas de un documento contabilizado ya no cambian.
func (s *Service) RecalculateTotal(ctx context.Context, documentID int64) (decimal.Decimal, error) {
	if documentID <= 0 {
		return decimal.Zero, fmt.Errorf("recalcular documento %d: %w", documentID, domain.ErrValidation)
	}

	var total decimal.Decimal
	err := s.inTx(ctx, func(r txRepos) error {
		doc, err := lockDocument(ctx, r.docs, documentID)
		if err != nil {
			return err
		}
		if doc.Status != entity.StatusDraft {
			return fmt.Errorf("recalcular documento %d en estado %s: %w", doc.ID, doc.Status, domain.ErrInvalidStateTransition)
		}
		total, err = r.lines.SumByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		_, err = r.docs.UpdateTotal(ctx, doc.ID, total)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// DeleteDraft borra lógicamente un borrador y sus líneas. El número queda libre.
func (s *Service) DeleteDraft(ctx context.Context, documentID int64) error {
	if documentID <= 0 {
		return fmt.Errorf("borrar documento %d: %w", documentID, domain.ErrValidation)
	}

	err := s.inTx(ctx, func(r txRepos) error {
		doc, err := lockDocument(ctx, r.docs, documentID)
		if err != nil {
			return err
		}
		if doc.Status != entity.StatusDraft {
			return fmt.Errorf("borrar documento %d en estado %s: %w", doc.ID, doc.Status, domain.ErrInvalidStateTransition)
		}
		if _, err := r.lines.DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		ok, err := r.docs.MarkDeleted(ctx, doc.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("borrar documento %d: %w", doc.ID, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		s.logFailure(err, documentID, "borrado rechazado")
		return err
	}
	s.log.Info().Int64("document_id", documentID).Msg("borrador eliminado")
	return nil
}
