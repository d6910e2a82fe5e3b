// Package sunat contiene las validaciones de dominio que habilitan la emisión
// de un comprobante electrónico. Toda falla aquí aborta la emisión ANTES de
// asignar correlativo: un intento rechazado nunca quema un número.
package sunat

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	pkgsunat "github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ErrInvalidDocument agrupa errores de validación del comprobante.
var ErrInvalidDocument = errors.New("comprobante inválido para SUNAT")

// Recipient datos del adquirente a validar.
type Recipient struct {
	IdentityType   string // Catálogo 06
	IdentityNumber string
	Name           string
	Address        string // opcional
}

// ValidateBuildInput valida el input de emisión: tipo de comprobante, moneda,
// adquirente e ítems. Las facturas exigen adquirente con RUC; las boletas
// aceptan DNI u otros documentos del Catálogo 06.
func ValidateBuildInput(docType, currency string, recipient Recipient, items []entity.DocumentItem) error {
	var errs []error

	if !pkgsunat.IsValidCode("01", docType) {
		errs = append(errs, fmt.Errorf("tipo de comprobante %q fuera del Catálogo 01", docType))
	}
	if !pkgsunat.IsValidCode("02", currency) {
		errs = append(errs, fmt.Errorf("moneda %q fuera del Catálogo 02", currency))
	}

	errs = append(errs, validateRecipient(docType, recipient)...)

	if len(items) == 0 {
		errs = append(errs, errors.New("el comprobante debe tener al menos un ítem"))
	}
	for i, item := range items {
		errs = append(errs, validateItem(i+1, item)...)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidDocument}, errs...)...)
	}
	return nil
}

func validateRecipient(docType string, r Recipient) []error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, errors.New("adquirente sin nombre o razón social"))
	}
	if !pkgsunat.IsValidCode("06", r.IdentityType) {
		errs = append(errs, fmt.Errorf("tipo de documento de identidad %q fuera del Catálogo 06", r.IdentityType))
		return errs
	}
	// Las facturas solo se emiten a adquirentes con RUC.
	if docType == pkgsunat.DocTypeFactura && r.IdentityType != pkgsunat.IdentityTypeRUC {
		errs = append(errs, errors.New("una factura exige adquirente con RUC (Catálogo 06, tipo 6)"))
	}
	switch r.IdentityType {
	case pkgsunat.IdentityTypeDNI:
		if err := pkgsunat.ValidateDNI(r.IdentityNumber); err != nil {
			errs = append(errs, fmt.Errorf("adquirente: %w", err))
		}
	case pkgsunat.IdentityTypeRUC:
		if err := pkgsunat.ValidateRUC(r.IdentityNumber); err != nil {
			errs = append(errs, fmt.Errorf("adquirente: %w", err))
		}
	default:
		if r.IdentityNumber == "" && r.IdentityType != pkgsunat.IdentityTypeSinDocumento {
			errs = append(errs, errors.New("adquirente sin número de documento"))
		}
	}
	return errs
}

func validateItem(n int, item entity.DocumentItem) []error {
	var errs []error
	if item.Description == "" {
		errs = append(errs, fmt.Errorf("ítem %d: sin descripción", n))
	}
	if !item.Quantity.IsPositive() {
		errs = append(errs, fmt.Errorf("ítem %d: cantidad debe ser positiva", n))
	}
	if !item.UnitPrice.IsPositive() {
		errs = append(errs, fmt.Errorf("ítem %d: precio unitario debe ser positivo", n))
	}
	if !item.UnitPrice.Equal(item.UnitPrice.Round(2)) {
		errs = append(errs, fmt.Errorf("ítem %d: precio unitario con más de 2 decimales", n))
	}
	if !pkgsunat.IsValidCode("07", item.IGVAffectation) {
		errs = append(errs, fmt.Errorf("ítem %d: afectación IGV %q fuera del Catálogo 07", n, item.IGVAffectation))
	}
	if item.Tax.IsNegative() || !item.Tax.Equal(item.Tax.Round(2)) {
		errs = append(errs, fmt.Errorf("ítem %d: IGV de línea debe ser no negativo con 2 decimales", n))
	}
	if item.Total.IsNegative() || !item.Total.Equal(item.Total.Round(2)) {
		errs = append(errs, fmt.Errorf("ítem %d: total de línea debe ser no negativo con 2 decimales", n))
	}
	return errs
}

// ValidateNoteReference valida la referencia obligatoria de una nota de
// crédito o débito al comprobante que modifica. Para los demás tipos la
// referencia debe venir vacía.
func ValidateNoteReference(docType, refType, refNumber, reason string) error {
	isNote := docType == pkgsunat.DocTypeNotaCredito || docType == pkgsunat.DocTypeNotaDebito
	if !isNote {
		if refType != "" || refNumber != "" {
			return fmt.Errorf("%w: solo las notas (07/08) llevan comprobante de referencia", ErrInvalidDocument)
		}
		return nil
	}
	var errs []error
	if refType != pkgsunat.DocTypeFactura && refType != pkgsunat.DocTypeBoleta {
		errs = append(errs, fmt.Errorf("la nota debe referenciar una factura (01) o boleta (03), no %q", refType))
	}
	if err := pkgsunat.ValidateDocumentNumber(refNumber); err != nil {
		errs = append(errs, fmt.Errorf("número de referencia: %w", err))
	}
	if reason == "" {
		errs = append(errs, errors.New("la nota debe indicar el motivo"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidDocument}, errs...)...)
	}
	return nil
}

// ValidateTotals comprueba la coherencia de los agregados de un comprobante ya
// construido: Subtotal e IGV son las sumas de línea y Total = round2(Subtotal+IGV).
func ValidateTotals(doc *entity.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: comprobante nulo", ErrInvalidDocument)
	}
	var sumTotal, sumTax decimal.Decimal
	for _, item := range doc.Items {
		sumTotal = sumTotal.Add(item.Total)
		sumTax = sumTax.Add(item.Tax)
	}
	if !doc.Subtotal.Equal(sumTotal.Round(2)) {
		return fmt.Errorf("%w: subtotal (%s) no coincide con la suma de líneas (%s)",
			ErrInvalidDocument, doc.Subtotal, sumTotal.Round(2))
	}
	if !doc.IGV.Equal(sumTax.Round(2)) {
		return fmt.Errorf("%w: IGV (%s) no coincide con la suma de impuestos de línea (%s)",
			ErrInvalidDocument, doc.IGV, sumTax.Round(2))
	}
	if !doc.Total.Equal(doc.Subtotal.Add(doc.IGV).Round(2)) {
		return fmt.Errorf("%w: total (%s) no es round2(subtotal + IGV)", ErrInvalidDocument, doc.Total)
	}
	return nil
}
