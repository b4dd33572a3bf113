// Package document contiene el motor de contabilización y anulación (storno) de documentos.
// Es el único componente que escribe en el libro de inventario.
package document

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

// qtyEpsilon tolerancia al comparar kilos (float64).
const qtyEpsilon = 1e-9

// Service orquesta contabilización y anulación sobre los puertos de repositorio.
// Los repositorios sueltos solo se usan para lecturas fuera de transacción.
type Service struct {
	txRunner    TxRunner
	docRepo     repository.DocumentRepository
	lineRepo    repository.DocumentLineRepository
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewService construye el servicio.
func NewService(
	txRunner TxRunner,
	docRepo repository.DocumentRepository,
	lineRepo repository.DocumentLineRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		txRunner:    txRunner,
		docRepo:     docRepo,
		lineRepo:    lineRepo,
		stockRepo:   stockRepo,
		productRepo: productRepo,
		log:         log.Component("documents"),
	}
}

// txRepos repositorios atados a la transacción en curso.
type txRepos struct {
	docs     repository.DocumentRepository
	lines    repository.DocumentLineRepository
	stock    repository.StockRepository
	products repository.ProductRepository
}

func (s *Service) inTx(ctx context.Context, fn func(r txRepos) error) error {
	return s.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		lineRepo repository.DocumentLineRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		return fn(txRepos{docs: docRepo, lines: lineRepo, stock: stockRepo, products: productRepo})
	})
}

// PostDocument contabiliza un documento en borrador: escribe un movimiento por línea
// (cantidad × multiplicador del tipo) y pasa el estado a POSTED, todo en una transacción.
// En documentos de salida verifica antes que el saldo activo cubra cada producto;
// si alguno no alcanza no se escribe ningún movimiento (domain.ErrInsufficientStock).
func (s *Service) PostDocument(ctx context.Context, documentID int64) error {
	if documentID <= 0 {
		return fmt.Errorf("contabilizar documento %d: %w", documentID, domain.ErrValidation)
	}

	var written int
	err := s.inTx(ctx, func(r txRepos) error {
		doc, err := lockDocument(ctx, r.docs, documentID)
		if err != nil {
			return err
		}
		written, err = s.post(ctx, r, doc)
		return err
	})
	if err != nil {
		s.logFailure(err, documentID, "contabilización rechazada")
		return err
	}

	s.log.Info().Int64("document_id", documentID).Int("movements", written).Msg("documento contabilizado")
	return nil
}

// post aplica la contabilización sobre un documento ya bloqueado. Devuelve los movimientos escritos.
func (s *Service) post(ctx context.Context, r txRepos, doc *entity.Document) (int, error) {
	if !doc.Status.CanTransitionTo(entity.StatusPosted) {
		return 0, fmt.Errorf("contabilizar documento %d en estado %s: %w", doc.ID, doc.Status, domain.ErrInvalidStateTransition)
	}

	lines, err := r.lines.FindByDocument(ctx, doc.ID)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, fmt.Errorf("documento %d sin líneas: %w", doc.ID, domain.ErrValidation)
	}
	for _, l := range lines {
		if !l.Valid() || l.QtyKg <= 0 {
			return 0, fmt.Errorf("documento %d, línea %d: cantidad %.3f: %w", doc.ID, l.ID, l.QtyKg, domain.ErrValidation)
		}
	}

	if doc.Type.IsOutbound() {
		if err := checkSufficiency(ctx, r, lines); err != nil {
			return 0, fmt.Errorf("documento %d: %w", doc.ID, err)
		}
	}

	multiplier := doc.Type.Multiplier()
	for _, l := range lines {
		mov := &entity.InventoryMovement{
			DocumentID:   doc.ID,
			ProductID:    l.ProductID,
			QtyDeltaKg:   l.QtyKg * multiplier,
			MovementDate: entity.DateOnly(doc.Date),
		}
		if _, err := r.stock.CreateMovement(ctx, mov); err != nil {
			return 0, err
		}
	}

	ok, err := r.docs.UpdateStatus(ctx, doc.ID, entity.StatusDraft, entity.StatusPosted)
	if err != nil {
		return 0, err
	}
	if !ok {
		// Otro proceso cambió el estado entre la lectura y la escritura.
		return 0, fmt.Errorf("contabilizar documento %d: estado modificado concurrentemente: %w", doc.ID, domain.ErrInvalidStateTransition)
	}
	return len(lines), nil
}

// checkSufficiency bloquea los productos implicados y verifica, por producto, que el saldo
// activo cubra la suma de las líneas de ese producto.
func checkSufficiency(ctx context.Context, r txRepos, lines []*entity.DocumentLine) error {
	need := make(map[int64]float64, len(lines))
	for _, l := range lines {
		need[l.ProductID] += l.QtyKg
	}
	ids := make([]int64, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := r.products.LockForUpdate(ctx, ids); err != nil {
		return err
	}
	for _, id := range ids {
		balance, err := r.stock.GetStockBalance(ctx, id)
		if err != nil {
			return err
		}
		if balance+qtyEpsilon < need[id] {
			return fmt.Errorf("producto %d: saldo %.3f kg, requerido %.3f kg: %w", id, balance, need[id], domain.ErrInsufficientStock)
		}
	}
	return nil
}

// CancelDocument anula (storno) un documento contabilizado: marca como anulados sus
// movimientos activos y pasa el estado a CANCELLED en la misma transacción.
// Solo documentos POSTED; si no hay movimientos activos devuelve domain.ErrNoActiveMovements
// y el estado no cambia.
func (s *Service) CancelDocument(ctx context.Context, documentID int64) error {
	if documentID <= 0 {
		return fmt.Errorf("anular documento %d: %w", documentID, domain.ErrValidation)
	}

	var flipped int
	err := s.inTx(ctx, func(r txRepos) error {
		doc, err := lockDocument(ctx, r.docs, documentID)
		if err != nil {
			return err
		}
		if !doc.Status.CanTransitionTo(entity.StatusCancelled) {
			return fmt.Errorf("anular documento %d en estado %s: %w", doc.ID, doc.Status, domain.ErrInvalidStateTransition)
		}

		movements, err := r.stock.FindMovementsByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		for _, m := range movements {
			if !m.Active() {
				continue
			}
			ok, err := r.stock.CancelMovement(ctx, m.ID)
			if err != nil {
				return err
			}
			if ok {
				flipped++
			}
		}
		if flipped == 0 {
			return fmt.Errorf("anular documento %d: %w", doc.ID, domain.ErrNoActiveMovements)
		}

		ok, err := r.docs.Cancel(ctx, doc.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("anular documento %d: estado no actualizado: %w", doc.ID, domain.ErrStorage)
		}
		return nil
	})
	if err != nil {
		s.logFailure(err, documentID, "anulación rechazada")
		return err
	}

	s.log.Info().Int64("document_id", documentID).Int("movements", flipped).Msg("documento anulado")
	return nil
}

// lockDocument lee el documento con bloqueo de fila y valida que exista.
func lockDocument(ctx context.Context, docs repository.DocumentRepository, id int64) (*entity.Document, error) {
	doc, err := docs.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Deleted {
		return nil, fmt.Errorf("documento %d: %w", id, domain.ErrNotFound)
	}
	if !doc.Valid() {
		return nil, fmt.Errorf("documento %d sin número: %w", id, domain.ErrValidation)
	}
	return doc, nil
}

// IsBusinessError indica si err es un rechazo de negocio (no una falla de almacenamiento).
func IsBusinessError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidStateTransition) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrNoActiveMovements) ||
		errors.Is(err, domain.ErrDuplicate)
}

func (s *Service) logFailure(err error, documentID int64, msg string) {
	if IsBusinessError(err) {
		s.log.Warn().Err(err).Int64("document_id", documentID).Msg(msg)
		return
	}
	s.log.Error().Err(err).Int64("document_id", documentID).Msg(msg)
}
