package dto

// DocumentResponse cabecera de documento. Importes como string con dos decimales
// y fechas como YYYY-MM-DD.
type DocumentResponse struct {
	ID          int64  `json:"id"`
	DocType     string `json:"doc_type"`
	Number      string `json:"number"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	SenderID    *int64 `json:"sender_id,omitempty"`
	ReceiverID  *int64 `json:"receiver_id,omitempty"`
	TotalAmount string `json:"total_amount"`
	Notes       string `json:"notes,omitempty"`
}

// DocumentLineResponse línea de documento.
type DocumentLineResponse struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	QtyKg     float64 `json:"qty_kg"`
	Price     string  `json:"price"`
	LineSum   string  `json:"line_sum"`
}

// DocumentDetailResponse respuesta de GET /api/documents/:id.
type DocumentDetailResponse struct {
	DocumentResponse
	Lines []DocumentLineResponse `json:"lines"`
}

// DocumentListResponse respuesta de GET /api/documents.
type DocumentListResponse struct {
	Total     int                `json:"total"`
	Documents []DocumentResponse `json:"documents"`
	Page      PageResponse       `json:"page"`
}

// DocumentActionResponse resultado de contabilizar, anular o borrar.
type DocumentActionResponse struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RecalculateResponse respuesta de POST /api/documents/:id/recalculate.
type RecalculateResponse struct {
	ID          int64  `json:"id"`
	TotalAmount string `json:"total_amount"`
}
