package dto

import "github.com/shopspring/decimal"

// CreateDocumentRequest body para POST /api/documents.
// Los totales por línea (tax, total) los calcula el emisor; el servidor
// valida coherencia pero no los recalcula.
type CreateDocumentRequest struct {
	Type     string                `json:"type"`     // catálogo 01: "01" factura, "03" boleta, "07", "08"
	Series   string                `json:"series"`   // F001, B001, ...
	Currency string                `json:"currency"` // PEN, USD, EUR
	Customer DocumentCustomer      `json:"customer"`
	Items    []DocumentItemRequest `json:"items"`

	// Solo para notas de crédito/débito (tipos 07 y 08).
	RefDocumentType   string `json:"ref_document_type,omitempty"`
	RefDocumentNumber string `json:"ref_document_number,omitempty"`
	NoteReason        string `json:"note_reason,omitempty"`
}

// DocumentCustomer adquirente del comprobante.
type DocumentCustomer struct {
	IdentityType   string `json:"identity_type"` // catálogo 06: "1" DNI, "6" RUC
	IdentityNumber string `json:"identity_number"`
	Name           string `json:"name"`
	Address        string `json:"address,omitempty"`
}

// DocumentItemRequest línea del comprobante.
type DocumentItemRequest struct {
	Description    string          `json:"description"`
	UnitCode       string          `json:"unit_code"` // NIU, ZZ, KGM...
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	IGVAffectation string          `json:"igv_affectation"` // catálogo 07
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"` // valor de venta de la línea, sin IGV
}

// DocumentResponse comprobante en respuestas.
type DocumentResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	Type            string          `json:"type"`
	Series          string          `json:"series"`
	Number          string          `json:"number"` // SERIE-CORRELATIVO, ej. B001-00000001
	IssueDate       string          `json:"issue_date"`
	Currency        string          `json:"currency"`
	CustomerName    string          `json:"customer_name"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	IGV             decimal.Decimal `json:"igv"`
	Total           decimal.Decimal `json:"total"`
	State           string          `json:"state"` // PENDIENTE|ENVIADO|ACEPTADO|RECHAZADO
	TicketID        string          `json:"ticket_id,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
}

// DocumentStatusDTO respuesta ligera para el endpoint de polling
// GET /api/documents/:number/status.
type DocumentStatusDTO struct {
	Number       string `json:"number"`
	State        string `json:"state"`
	ResponseCode string `json:"response_code,omitempty"` // código del CDR ("0" = aceptado)
	Description  string `json:"description,omitempty"`
	TicketID     string `json:"ticket_id,omitempty"`
}

// SubmitResultDTO resultado de envío a SUNAT.
type SubmitResultDTO struct {
	Number       string `json:"number"`
	State        string `json:"state"`
	Attempts     int    `json:"attempts"`
	ResponseCode string `json:"response_code,omitempty"`
	Description  string `json:"description,omitempty"`
}

// DocumentListResponse lista paginada de comprobantes.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// VoidDocumentsRequest body para POST /api/documents/void: comunicación de
// baja de uno o más comprobantes ya aceptados.
type VoidDocumentsRequest struct {
	ReferenceDate string             `json:"reference_date"` // fecha de emisión de los comprobantes dados de baja
	Documents     []VoidDocumentItem `json:"documents"`
}

// VoidDocumentItem comprobante individual dentro de la comunicación de baja.
type VoidDocumentItem struct {
	Type   string `json:"type"`
	Series string `json:"series"`
	Number string `json:"number"`
	Reason string `json:"reason"`
}

// VoidDocumentsResponse ticket devuelto por sendSummary.
type VoidDocumentsResponse struct {
	TicketID string `json:"ticket_id"`
}
