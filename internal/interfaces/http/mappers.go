package http

import (
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/money"
)

const dateLayout = "2006-01-02"

func toDocumentResponse(d *entity.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:          d.ID,
		DocType:     d.Type.String(),
		Number:      d.Number,
		Date:        d.Date.Format(dateLayout),
		Status:      d.Status.String(),
		SenderID:    d.SenderID,
		ReceiverID:  d.ReceiverID,
		TotalAmount: money.Format(d.TotalAmount),
		Notes:       d.Notes,
	}
}

func toLineResponses(lines []*entity.DocumentLine) []dto.DocumentLineResponse {
	out := make([]dto.DocumentLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.DocumentLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			QtyKg:     l.QtyKg,
			Price:     money.Format(l.Price),
			LineSum:   money.Format(l.LineSum),
		})
	}
	return out
}

func toMovementResponses(ms []*entity.InventoryMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, dto.MovementResponse{
			ID:           m.ID,
			DocumentID:   m.DocumentID,
			ProductID:    m.ProductID,
			QtyDeltaKg:   m.QtyDeltaKg,
			MovementDate: m.MovementDate.Format(dateLayout),
			Cancelled:    m.Cancelled,
		})
	}
	return out
}

func toBalanceResponses(bs []*entity.StockBalance) []dto.StockBalanceResponse {
	out := make([]dto.StockBalanceResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, dto.StockBalanceResponse{
			ProductID:   b.ProductID,
			ProductName: b.ProductName,
			BalanceKg:   b.BalanceKg,
			Unit:        b.Unit,
		})
	}
	return out
}
