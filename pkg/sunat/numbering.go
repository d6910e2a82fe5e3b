package sunat

import (
	"fmt"
	"regexp"
)

// Patrones de serie por tipo de comprobante: una letra según el tipo más tres
// dígitos (F001, B001...). Las notas de crédito/débito heredan la familia de
// serie del comprobante que modifican, por lo que aceptan ambas letras.
var seriesPatterns = map[string]*regexp.Regexp{
	DocTypeFactura:     regexp.MustCompile(`^F\d{3}$`),
	DocTypeBoleta:      regexp.MustCompile(`^B\d{3}$`),
	DocTypeNotaCredito: regexp.MustCompile(`^[FB]\d{3}$`),
	DocTypeNotaDebito:  regexp.MustCompile(`^[FB]\d{3}$`),
}

// ValidateSeries verifica que la serie cumpla el patrón del tipo de comprobante.
func ValidateSeries(docType, series string) error {
	re, ok := seriesPatterns[docType]
	if !ok {
		return fmt.Errorf("sunat: tipo de comprobante desconocido %q", docType)
	}
	if !re.MatchString(series) {
		return fmt.Errorf("sunat: serie %q inválida para tipo %s (patrón %s)", series, docType, re.String())
	}
	return nil
}

// FormatDocumentNumber arma el número completo: serie + correlativo con
// relleno de ceros a 8 dígitos (ej. B001-00000001).
func FormatDocumentNumber(series string, correlative int64) string {
	return fmt.Sprintf("%s-%08d", series, correlative)
}

var documentNumberPattern = regexp.MustCompile(`^[A-Z]\d{3}-\d{1,8}$`)

// ValidateDocumentNumber verifica el formato SERIE-CORRELATIVO de un número
// de comprobante ya emitido (ej. F001-00000001).
func ValidateDocumentNumber(number string) error {
	if !documentNumberPattern.MatchString(number) {
		return fmt.Errorf("sunat: número de comprobante %q inválido (se espera SERIE-CORRELATIVO)", number)
	}
	return nil
}

// FileStem arma la raíz del nombre de archivo que exige SUNAT para el ZIP y
// el XML interno: RUC-tipoComprobante-serie-correlativo.
// Ej: 20123456789-01-F001-00000001. El XML usa stem+".xml" y el ZIP stem+".zip".
func FileStem(ruc, docType, number string) string {
	return fmt.Sprintf("%s-%s-%s", ruc, docType, number)
}
