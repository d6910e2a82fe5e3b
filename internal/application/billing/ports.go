package billing

import (
	"context"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// Submitter cliente del billService de SUNAT (SOAP 1.1).
// SendBill envía un comprobante individual y devuelve el CDR.
// SendSummary envía un resumen/comunicación de baja y devuelve un ticket.
// GetStatus consulta el ticket; si aún está en proceso devuelve un recibo
// con IsTicket() == true.
type Submitter interface {
	SendBill(ctx context.Context, zipName string, zipContent []byte, creds sunat.SOLCredentials) (*entity.Receipt, error)
	SendSummary(ctx context.Context, zipName string, zipContent []byte, creds sunat.SOLCredentials) (string, error)
	GetStatus(ctx context.Context, ticket string, creds sunat.SOLCredentials) (*entity.Receipt, error)
}

// DocumentSigner firma XML UBL con el certificado digital del emisor
// (XMLDSig enveloped dentro de ext:UBLExtensions).
type DocumentSigner interface {
	Sign(ctx context.Context, xmlContent []byte, cert *entity.Certificate) ([]byte, error)
}

// PDFGenerator genera la representación impresa de un comprobante aceptado.
type PDFGenerator interface {
	Generate(doc *entity.Document, company *entity.Company) ([]byte, error)
}
