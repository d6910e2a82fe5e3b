// Package sunat implementa la generación de XML UBL 2.1, el empaquetado ZIP
// y el cliente SOAP del billService para facturación electrónica SUNAT (Perú).
package sunat

import (
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// DocumentBuildContext contexto con todos los datos necesarios para construir
// el XML del comprobante. El Document ya trae los snapshots de emisor y
// adquirente; Company aporta los datos registrales completos.
type DocumentBuildContext struct {
	Company  *entity.Company
	Document *entity.Document
}

// VoidedItem comprobante individual dentro de una comunicación de baja.
type VoidedItem struct {
	DocType string // Catálogo 01
	Series  string
	Number  string // correlativo (con o sin relleno de ceros)
	Reason  string
}
