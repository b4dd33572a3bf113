package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocType tipo de documento. Se serializa en minúsculas.
type DocType string

// Tipos de documento.
const (
	DocTypeSupply   DocType = "supply"   // entrada de proveedor
	DocTypeSale     DocType = "sale"     // venta a cliente
	DocTypeReturn   DocType = "return"   // devolución de cliente
	DocTypeTransfer DocType = "transfer" // traslado (TTN)
	DocTypeWriteOff DocType = "writeoff" // baja de mercancía
)

// ParseDocType interpreta el token persistido (sin distinguir mayúsculas).
func ParseDocType(s string) (DocType, error) {
	switch t := DocType(strings.ToLower(strings.TrimSpace(s))); t {
	case DocTypeSupply, DocTypeSale, DocTypeReturn, DocTypeTransfer, DocTypeWriteOff:
		return t, nil
	}
	return "", fmt.Errorf("tipo de documento desconocido: %q", s)
}

// Multiplier signo aplicado a la cantidad de cada línea al contabilizar:
// +1 para entradas (supply, return), -1 para salidas.
func (t DocType) Multiplier() float64 {
	if t.IsInbound() {
		return 1
	}
	return -1
}

// IsInbound indica si el documento suma stock.
func (t DocType) IsInbound() bool {
	return t == DocTypeSupply || t == DocTypeReturn
}

// IsOutbound indica si el documento descuenta stock y requiere verificar saldo.
func (t DocType) IsOutbound() bool { return !t.IsInbound() }

func (t DocType) String() string { return string(t) }

// DocStatus estado del documento. Se serializa en mayúsculas.
type DocStatus string

// Estados: DRAFT -> POSTED -> CANCELLED (terminal).
const (
	StatusDraft     DocStatus = "DRAFT"
	StatusPosted    DocStatus = "POSTED"
	StatusCancelled DocStatus = "CANCELLED"
)

// ParseDocStatus interpreta el token persistido (sin distinguir mayúsculas).
func ParseDocStatus(s string) (DocStatus, error) {
	switch st := DocStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusDraft, StatusPosted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("estado de documento desconocido: %q", s)
}

// CanTransitionTo indica si el paso de s a next es una arista válida de la máquina de estados.
func (s DocStatus) CanTransitionTo(next DocStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusPosted
	case StatusPosted:
		return next == StatusCancelled
	}
	return false
}

func (s DocStatus) String() string { return string(s) }

// Document cabecera de un documento de almacén (entrada, venta, devolución, traslado, baja).
// TotalAmount es dinero: decimal exacto, nunca float.
type Document struct {
	ID          int64
	Type        DocType
	Number      string
	Date        time.Time // solo fecha (sin hora)
	Status      DocStatus
	SenderID    *int64 // contraparte emisora (opcional)
	ReceiverID  *int64 // contraparte receptora (opcional)
	TotalAmount decimal.Decimal
	Notes       string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Valid un documento persistido tiene ID asignado y número no vacío.
func (d *Document) Valid() bool {
	return d != nil && d.ID > 0 && strings.TrimSpace(d.Number) != ""
}

// DateOnly trunca t a la fecha calendario en UTC.
func DateOnly(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
