package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	domsunat "github.com/jhoicas/facturacion-sunat/internal/domain/sunat"
	infrasunat "github.com/jhoicas/facturacion-sunat/internal/infrastructure/sunat"
)

// BuildDocumentUseCase construye un comprobante: valida la entrada, reserva
// el correlativo, genera el XML UBL 2.1 y lo persiste en estado PENDIENTE.
// Los totales por línea vienen calculados por el emisor; aquí solo se suman
// y se valida su coherencia, nunca se recalculan.
type BuildDocumentUseCase struct {
	companyRepo repository.CompanyRepository
	docRepo     repository.DocumentRepository
	allocator   *NumberAllocator
	xmlBuilder  *infrasunat.XMLBuilderService
}

// NewBuildDocumentUseCase construye el caso de uso.
func NewBuildDocumentUseCase(
	companyRepo repository.CompanyRepository,
	docRepo repository.DocumentRepository,
	allocator *NumberAllocator,
	xmlBuilder *infrasunat.XMLBuilderService,
) *BuildDocumentUseCase {
	return &BuildDocumentUseCase{
		companyRepo: companyRepo,
		docRepo:     docRepo,
		allocator:   allocator,
		xmlBuilder:  xmlBuilder,
	}
}

// Build crea el comprobante. La validación ocurre completa ANTES de reservar
// el correlativo: una petición inválida no consume números de la serie.
func (uc *BuildDocumentUseCase) Build(ctx context.Context, companyID string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	items := make([]entity.DocumentItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = entity.DocumentItem{
			Description:    it.Description,
			UnitCode:       it.UnitCode,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			IGVAffectation: it.IGVAffectation,
			Tax:            it.Tax,
			Total:          it.Total,
		}
	}
	recipient := domsunat.Recipient{
		IdentityType:   in.Customer.IdentityType,
		IdentityNumber: in.Customer.IdentityNumber,
		Name:           in.Customer.Name,
	}
	if err := domsunat.ValidateBuildInput(in.Type, in.Currency, recipient, items); err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	if err := domsunat.ValidateNoteReference(in.Type, in.RefDocumentType, in.RefDocumentNumber, in.NoteReason); err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	// Agregados a partir de los totales de línea (autoritativos).
	var subtotal, igv decimal.Decimal
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
		igv = igv.Add(it.Tax)
	}
	subtotal = subtotal.Round(2)
	igv = igv.Round(2)
	total := subtotal.Add(igv)

	correlative, number, err := uc.allocator.Allocate(ctx, companyID, in.Type, in.Series)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &entity.Document{
		ID:                     uuid.New().String(),
		CompanyID:              companyID,
		Type:                   in.Type,
		Series:                 in.Series,
		Correlative:            correlative,
		Number:                 number,
		IssueDate:              now,
		Currency:               in.Currency,
		IssuerRUC:              company.RUC,
		IssuerName:             company.BusinessName,
		IssuerAddress:          company.Address,
		CustomerIdentityType:   in.Customer.IdentityType,
		CustomerIdentityNumber: in.Customer.IdentityNumber,
		CustomerName:           in.Customer.Name,
		CustomerAddress:        in.Customer.Address,
		RefDocumentType:        in.RefDocumentType,
		RefDocumentNumber:      in.RefDocumentNumber,
		NoteReason:             in.NoteReason,
		Items:                  items,
		Subtotal:               subtotal,
		IGV:                    igv,
		Total:                  total,
		State:                  entity.EstadoPendiente,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	xmlBytes, err := uc.xmlBuilder.Build(&infrasunat.DocumentBuildContext{
		Company:  company,
		Document: doc,
	})
	if err != nil {
		return nil, fmt.Errorf("generar XML UBL: %w", err)
	}
	doc.XML = string(xmlBytes)

	if err := uc.docRepo.Save(ctx, doc); err != nil {
		return nil, errors.Join(domain.ErrPersistence, err)
	}
	return toDocumentResponse(doc), nil
}

// GetDocument obtiene un comprobante por número, acotado a la empresa.
func (uc *BuildDocumentUseCase) GetDocument(ctx context.Context, companyID, number string) (*dto.DocumentResponse, error) {
	doc, err := uc.docRepo.GetByCompanyAndNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return toDocumentResponse(doc), nil
}

// GetStatus respuesta ligera para polling del estado.
func (uc *BuildDocumentUseCase) GetStatus(ctx context.Context, companyID, number string) (*dto.DocumentStatusDTO, error) {
	doc, err := uc.docRepo.GetByCompanyAndNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	st := &dto.DocumentStatusDTO{
		Number:   doc.Number,
		State:    doc.State,
		TicketID: doc.TicketID,
	}
	if doc.Receipt != nil {
		st.ResponseCode = doc.Receipt.ResponseCode
		st.Description = doc.Receipt.Description
	}
	return st, nil
}

// ListByState lista comprobantes de la empresa en un estado dado.
func (uc *BuildDocumentUseCase) ListByState(ctx context.Context, companyID, state string, page dto.PageRequest) (*dto.DocumentListResponse, error) {
	page.DefaultPage()
	docs, err := uc.docRepo.ListByCompanyAndState(ctx, companyID, state, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.DocumentListResponse{
		Items: make([]dto.DocumentResponse, 0, len(docs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, d := range docs {
		out.Items = append(out.Items, *toDocumentResponse(d))
	}
	return out, nil
}

func toDocumentResponse(doc *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:              doc.ID,
		CompanyID:       doc.CompanyID,
		Type:            doc.Type,
		Series:          doc.Series,
		Number:          doc.Number,
		IssueDate:       doc.IssueDate.Format("2006-01-02"),
		Currency:        doc.Currency,
		CustomerName:    doc.CustomerName,
		Subtotal:        doc.Subtotal,
		IGV:             doc.IGV,
		Total:           doc.Total,
		State:           doc.State,
		TicketID:        doc.TicketID,
		RejectionReason: doc.RejectionReason,
	}
}
