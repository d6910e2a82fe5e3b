// Package sunat contiene catálogos y validaciones alineados a los Anexos de la
// Resolución de Superintendencia 097-2012/SUNAT (facturación electrónica, Perú).
package sunat

// =============================================================================
// Catálogo 01 - Tipo de Comprobante de Pago
// =============================================================================

const (
	DocTypeFactura     = "01" // Factura
	DocTypeBoleta      = "03" // Boleta de venta
	DocTypeNotaCredito = "07" // Nota de crédito
	DocTypeNotaDebito  = "08" // Nota de débito
)

// ValidDocumentTypeCodes códigos de tipo de comprobante soportados.
var ValidDocumentTypeCodes = map[string]bool{
	DocTypeFactura:     true,
	DocTypeBoleta:      true,
	DocTypeNotaCredito: true,
	DocTypeNotaDebito:  true,
}

// =============================================================================
// Catálogo 06 - Tipo de Documento de Identidad del adquirente
// =============================================================================

const (
	IdentityTypeDNI             = "1" // DNI - persona natural, 8 dígitos
	IdentityTypeCarnetExtranjer = "4" // Carnet de extranjería
	IdentityTypeRUC             = "6" // RUC - 11 dígitos con dígito verificador
	IdentityTypePasaporte       = "7" // Pasaporte
	IdentityTypeSinDocumento    = "0" // No domiciliado / sin documento (boletas menores)
)

// ValidIdentityTypeCodes códigos de documento de identidad válidos (Catálogo 06).
var ValidIdentityTypeCodes = map[string]bool{
	IdentityTypeDNI: true, IdentityTypeCarnetExtranjer: true,
	IdentityTypeRUC: true, IdentityTypePasaporte: true,
	IdentityTypeSinDocumento: true,
}

// =============================================================================
// Catálogo 07 - Tipo de Afectación del IGV (por línea)
// =============================================================================

const (
	AfectacionGravado   = "10" // Gravado - operación onerosa
	AfectacionExonerado = "20" // Exonerado - operación onerosa
	AfectacionInafecto  = "30" // Inafecto - operación onerosa
)

// ValidAfectacionIGVCodes códigos de afectación IGV de uso común.
var ValidAfectacionIGVCodes = map[string]bool{
	AfectacionGravado: true, AfectacionExonerado: true, AfectacionInafecto: true,
}

// =============================================================================
// Catálogo 05 - Tipos de Tributo (los que aparecen en TaxTotal)
// =============================================================================

const (
	TributeCodeIGV = "1000" // IGV - Impuesto General a las Ventas
	TributeCodeEXO = "9997" // EXO - Exonerado
	TributeCodeINA = "9998" // INA - Inafecto
)

// TributeNameIGV y TributeTypeIGV son los valores fijos de cbc:Name / cbc:TaxTypeCode
// que SUNAT exige junto al código 1000.
const (
	TributeNameIGV = "IGV"
	TributeTypeIGV = "VAT"
)

// =============================================================================
// Catálogo 02 - Monedas (ISO 4217, subset aceptado por SUNAT)
// =============================================================================

const (
	CurrencyPEN = "PEN" // Sol
	CurrencyUSD = "USD" // Dólar americano
	CurrencyEUR = "EUR" // Euro
)

// ValidCurrencyCodes monedas aceptadas en DocumentCurrencyCode.
var ValidCurrencyCodes = map[string]bool{
	CurrencyPEN: true, CurrencyUSD: true, CurrencyEUR: true,
}

// =============================================================================
// Unidades de medida (UN/ECE rec 20, subset de uso frecuente)
// =============================================================================

const (
	UnitUnidad   = "NIU" // Unidad (bienes)
	UnitServicio = "ZZ"  // Servicio
	UnitKilogram = "KGM" // Kilogramo
	UnitLitro    = "LTR" // Litro
	UnitMetro    = "MTR" // Metro
)

// ValidMeasurementUnitCodes unidades válidas para InvoicedQuantity@unitCode.
var ValidMeasurementUnitCodes = map[string]bool{
	UnitUnidad: true, UnitServicio: true, UnitKilogram: true,
	UnitLitro: true, UnitMetro: true,
}

// catalogues registro por ID para el lookup genérico que usa el validador.
var catalogues = map[string]map[string]bool{
	"01": ValidDocumentTypeCodes,
	"02": ValidCurrencyCodes,
	"06": ValidIdentityTypeCodes,
	"07": ValidAfectacionIGVCodes,
}

// IsValidCode indica si code pertenece al catálogo catalogueID.
// Un catálogo desconocido siempre retorna false.
func IsValidCode(catalogueID, code string) bool {
	cat, ok := catalogues[catalogueID]
	if !ok {
		return false
	}
	return cat[code]
}
