package repository

import (
	"context"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para comprobantes.
// Los comprobantes nunca se eliminan: pendientes y rechazados quedan como
// registro de auditoría.
type DocumentRepository interface {
	// Save persiste cabecera e ítems del comprobante (alta inicial, estado PENDIENTE).
	Save(ctx context.Context, doc *entity.Document) error

	// GetByCompanyAndNumber recupera el comprobante por su identidad de negocio.
	// Devuelve nil, nil si no existe.
	GetByCompanyAndNumber(ctx context.Context, companyID, number string) (*entity.Document, error)

	// SetState actualiza solo el estado (transiciones PENDIENTE/ENVIADO).
	SetState(ctx context.Context, companyID, number, state string) error

	// SetSignedXML escribe el XML firmado. La restricción de "a lo sumo una vez"
	// la garantiza el caso de uso de firma; aquí solo se persiste.
	SetSignedXML(ctx context.Context, companyID, number, signedXML string) error

	// SetTicket guarda el ticket devuelto por un envío asíncrono.
	SetTicket(ctx context.Context, companyID, number, ticket string) error

	// AttachReceipt fija el estado terminal y adjunta la constancia (CDR).
	AttachReceipt(ctx context.Context, companyID, number, state, reason string, receipt *entity.Receipt) error

	// ListByCompanyAndState lista comprobantes de una empresa en un estado dado
	// (ej. PENDIENTE para reenvío).
	ListByCompanyAndState(ctx context.Context, companyID, state string, limit, offset int) ([]*entity.Document, error)
}
