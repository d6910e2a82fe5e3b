package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

// PDFUseCase genera la representación impresa (PDF) de un comprobante.
// Solo se permite descargar el PDF de comprobantes ACEPTADOS: antes de eso la
// representación carecería de valor frente a SUNAT.
type PDFUseCase struct {
	docRepo     repository.DocumentRepository
	companyRepo repository.CompanyRepository
	generator   PDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(docRepo repository.DocumentRepository, companyRepo repository.CompanyRepository, generator PDFGenerator) *PDFUseCase {
	return &PDFUseCase{docRepo: docRepo, companyRepo: companyRepo, generator: generator}
}

// DownloadDocumentPDF recupera el comprobante, verifica que esté ACEPTADO y
// genera el PDF de la representación impresa.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el comprobante no existe.
//   - domain.ErrInvalidInput     si el comprobante no está ACEPTADO.
func (uc *PDFUseCase) DownloadDocumentPDF(ctx context.Context, companyID, number string) (pdfBytes []byte, filename string, err error) {
	doc, err := uc.docRepo.GetByCompanyAndNumber(ctx, companyID, number)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener comprobante: %w", err)
	}
	if doc == nil {
		return nil, "", domain.ErrNotFound
	}
	if doc.State != entity.EstadoAceptado {
		return nil, "", fmt.Errorf("%w: el comprobante está en estado %s, solo los ACEPTADOS tienen representación impresa",
			domain.ErrInvalidInput, doc.State)
	}

	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil || company == nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}

	pdfBytes, err = uc.generator.Generate(doc, company)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, doc.Number + ".pdf", nil
}
