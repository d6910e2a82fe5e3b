package repository

import (
	"context"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// CertificateRepository almacén clave-valor de certificados por empresa.
// El núcleo de firma solo necesita lectura; Put existe para la carga y
// rotación desde la API de administración.
type CertificateRepository interface {
	// GetByCompany devuelve el certificado vigente más reciente de la empresa.
	// Devuelve nil, nil si la empresa no tiene certificado.
	GetByCompany(ctx context.Context, companyID string) (*entity.Certificate, error)
	Put(ctx context.Context, cert *entity.Certificate) error
}
