package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

// SignUseCase firma el XML de un comprobante con el certificado de su empresa.
// Un comprobante se firma a lo sumo una vez: el reenvío reutiliza siempre el
// XML firmado almacenado.
type SignUseCase struct {
	docRepo  repository.DocumentRepository
	certRepo repository.CertificateRepository
	signer   DocumentSigner
}

// NewSignUseCase construye el caso de uso de firma.
func NewSignUseCase(
	docRepo repository.DocumentRepository,
	certRepo repository.CertificateRepository,
	signer DocumentSigner,
) *SignUseCase {
	return &SignUseCase{docRepo: docRepo, certRepo: certRepo, signer: signer}
}

// SignDocument firma el comprobante identificado por (companyID, number) y
// persiste el resultado. Devuelve el comprobante con SignedXML poblado.
func (uc *SignUseCase) SignDocument(ctx context.Context, companyID, number string) (*entity.Document, error) {
	doc, err := uc.docRepo.GetByCompanyAndNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.SignedXML != "" {
		return nil, domain.ErrAlreadySigned
	}
	if doc.XML == "" {
		return nil, domain.ErrEmptyDocument
	}

	cert, err := uc.certRepo.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, domain.ErrCertificateNotFound
	}
	if cert.CompanyID != companyID {
		return nil, domain.ErrCertificateMismatch
	}
	if !cert.ValidAt(time.Now()) {
		return nil, domain.ErrCertificateExpired
	}

	signed, err := uc.signer.Sign(ctx, []byte(doc.XML), cert)
	if err != nil {
		return nil, errors.Join(domain.ErrSigning, err)
	}
	if err := uc.docRepo.SetSignedXML(ctx, companyID, number, string(signed)); err != nil {
		return nil, errors.Join(domain.ErrPersistence, err)
	}
	doc.SignedXML = string(signed)
	return doc, nil
}
