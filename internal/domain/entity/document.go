package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del comprobante frente a SUNAT. El ciclo avanza solo hacia adelante
// (PENDIENTE → ENVIADO → ACEPTADO|RECHAZADO) salvo la arista explícita
// ENVIADO → PENDIENTE cuando se agotan los reintentos de envío.
const (
	EstadoPendiente = "PENDIENTE" // Numerado y persistido; envío pendiente o fallido
	EstadoEnviado   = "ENVIADO"   // Envío en curso; respuesta de SUNAT pendiente
	EstadoAceptado  = "ACEPTADO"  // CDR con código 0 (terminal)
	EstadoRechazado = "RECHAZADO" // CDR con código distinto de 0 (terminal)
)

// IsTerminalState indica si un estado es terminal (inmutable de ahí en adelante).
func IsTerminalState(state string) bool {
	return state == EstadoAceptado || state == EstadoRechazado
}

// Document representa un comprobante de pago electrónico. Su identidad de
// negocio es (CompanyID, Number); ID es solo la clave de fila.
//
// Invariantes: Total = round2(Subtotal + IGV); Number es inmutable una vez
// asignado; SignedXML se escribe a lo sumo una vez.
type Document struct {
	ID          string
	CompanyID   string
	Type        string // Catálogo 01: 01, 03, 07, 08
	Series      string // F001, B001...
	Correlative int64
	Number      string // SERIE-00000001
	IssueDate   time.Time
	Currency    string // Catálogo 02 (PEN, USD...)

	// Snapshot del emisor al momento de la emisión; nunca se re-consulta.
	IssuerRUC     string
	IssuerName    string
	IssuerAddress string

	// Adquirente (receptor) — snapshot inmutable por comprobante.
	CustomerIdentityType   string // Catálogo 06
	CustomerIdentityNumber string
	CustomerName           string
	CustomerAddress        string // opcional

	// Referencia al comprobante modificado; solo para notas (tipos 07 y 08).
	RefDocumentType   string
	RefDocumentNumber string
	NoteReason        string

	Items []DocumentItem

	Subtotal decimal.Decimal // suma de totales de línea, sin IGV
	IGV      decimal.Decimal // suma de impuestos de línea
	Total    decimal.Decimal // round2(Subtotal + IGV)

	XML       string // XML UBL 2.1 sin firma
	SignedXML string // XML con ds:Signature; vacío hasta que la firma tiene éxito
	State     string

	Receipt  *Receipt // nil hasta que SUNAT responde
	TicketID string   // ticket de sendSummary pendiente de resolver (bajas)

	RejectionReason string // descripción del CDR cuando el estado es RECHAZADO

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentItem línea del comprobante. El total y el IGV de línea vienen del
// caller y son autoritativos: no se recalculan desde cantidad × precio.
type DocumentItem struct {
	ID             string
	DocumentID     string
	Description    string
	UnitCode       string // UN/ECE rec 20 (NIU, ZZ...)
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	IGVAffectation string          // Catálogo 07: 10, 20, 30
	Tax            decimal.Decimal // IGV de línea, >= 0, 2 decimales
	Total          decimal.Decimal // valor de venta de línea, >= 0, 2 decimales
}

// RespuestaAceptada es el código con el que SUNAT acepta un comprobante en el CDR.
const RespuestaAceptada = "0"

// ReceiptCodeTicket pseudo-código para un envío asíncrono que devolvió ticket
// en lugar de CDR inmediato. Nunca debe reconciliarse como terminal.
const ReceiptCodeTicket = "TICKET"

// Receipt constancia de recepción (CDR) devuelta por SUNAT. Inmutable una vez
// adjuntada al comprobante.
type Receipt struct {
	ResponseCode string
	Description  string
	RawCDR       []byte // ZIP del ApplicationResponse tal como llegó
	ReceivedAt   time.Time
}

// IsTicket indica si la constancia es solo un ticket pendiente de resolver.
func (r *Receipt) IsTicket() bool {
	return r != nil && r.ResponseCode == ReceiptCodeTicket
}
