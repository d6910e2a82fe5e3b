package billing

import (
	"context"
	"errors"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

// StateForReceipt decide el estado terminal a partir del CDR: código "0" es
// aceptación, cualquier otro código es rechazo con la descripción como motivo.
func StateForReceipt(receipt *entity.Receipt) (state, reason string) {
	if receipt.ResponseCode == entity.RespuestaAceptada {
		return entity.EstadoAceptado, ""
	}
	return entity.EstadoRechazado, receipt.Description
}

// ResponseReconciler aplica la constancia de recepción (CDR) al comprobante.
// Los estados terminales son inmutables: reconciliar un comprobante ya
// ACEPTADO o RECHAZADO es un conflicto, no una actualización.
type ResponseReconciler struct {
	docRepo repository.DocumentRepository
}

// NewResponseReconciler construye el reconciliador.
func NewResponseReconciler(docRepo repository.DocumentRepository) *ResponseReconciler {
	return &ResponseReconciler{docRepo: docRepo}
}

// Reconcile fija el estado terminal del comprobante según el CDR recibido.
// Un recibo de ticket (envío aún en proceso en SUNAT) no es reconciliable:
// devuelve domain.ErrReceiptPending y el comprobante queda como está.
func (r *ResponseReconciler) Reconcile(ctx context.Context, companyID, number string, receipt *entity.Receipt) (*entity.Document, error) {
	if receipt == nil {
		return nil, domain.ErrNoReceipt
	}
	doc, err := r.docRepo.GetByCompanyAndNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if entity.IsTerminalState(doc.State) {
		return nil, domain.ErrConflict
	}
	if receipt.IsTicket() {
		return nil, domain.ErrReceiptPending
	}

	state, reason := StateForReceipt(receipt)
	if err := r.docRepo.AttachReceipt(ctx, companyID, number, state, reason, receipt); err != nil {
		return nil, errors.Join(domain.ErrPersistence, err)
	}
	doc.State = state
	doc.RejectionReason = reason
	doc.Receipt = receipt
	return doc, nil
}
