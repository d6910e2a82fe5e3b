package sunat

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	pkgsunat "github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// Namespaces oficiales UBL 2.1 usados por SUNAT.
const (
	NsInvoice    = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCreditNote = "urn:oasis:names:specification:ubl:schema:xsd:CreditNote-2"
	NsDebitNote  = "urn:oasis:names:specification:ubl:schema:xsd:DebitNote-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	// Extension Components
	NsExt = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
	// XML Digital Signature
	NsDs = "http://www.w3.org/2000/09/xmldsig#"
)

// Variaciones estructurales entre Invoice, CreditNote y DebitNote en UBL 2.1.
type rootShape struct {
	ns        string // namespace del elemento raíz
	root      string // Invoice | CreditNote | DebitNote
	line      string // InvoiceLine | CreditNoteLine | DebitNoteLine
	quantity  string // InvoicedQuantity | CreditedQuantity | DebitedQuantity
	total     string // LegalMonetaryTotal | RequestedMonetaryTotal
	typeCoded bool   // solo Invoice lleva cbc:InvoiceTypeCode
}

var shapes = map[string]rootShape{
	pkgsunat.DocTypeFactura:     {NsInvoice, "Invoice", "InvoiceLine", "InvoicedQuantity", "LegalMonetaryTotal", true},
	pkgsunat.DocTypeBoleta:      {NsInvoice, "Invoice", "InvoiceLine", "InvoicedQuantity", "LegalMonetaryTotal", true},
	pkgsunat.DocTypeNotaCredito: {NsCreditNote, "CreditNote", "CreditNoteLine", "CreditedQuantity", "LegalMonetaryTotal", false},
	pkgsunat.DocTypeNotaDebito:  {NsDebitNote, "DebitNote", "DebitNoteLine", "DebitedQuantity", "RequestedMonetaryTotal", false},
}

// XMLBuilderService construye el XML UBL 2.1 del comprobante (sin firma).
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el []byte del comprobante según UBL 2.1 y las reglas SUNAT.
// El documento sale con un ext:UBLExtension de contenido vacío como primer
// hijo: ahí inyecta el firmador el nodo ds:Signature.
func (s *XMLBuilderService) Build(ctx *DocumentBuildContext) ([]byte, error) {
	if ctx == nil || ctx.Document == nil || ctx.Company == nil {
		return nil, fmt.Errorf("sunat: faltan document o company en el contexto")
	}
	doc := ctx.Document
	shape, ok := shapes[doc.Type]
	if !ok {
		return nil, fmt.Errorf("sunat: tipo de comprobante %q sin representación UBL", doc.Type)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: shape.root},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: shape.ns},
			{Name: xml.Name{Local: "xmlns:cac"}, Value: NsCac},
			{Name: xml.Name{Local: "xmlns:cbc"}, Value: NsCbc},
			{Name: xml.Name{Local: "xmlns:ds"}, Value: NsDs},
			{Name: xml.Name{Local: "xmlns:ext"}, Value: NsExt},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	// ext:UBLExtensions siempre como primer hijo; el ExtensionContent vacío es
	// el placeholder donde el firmador inyecta ds:Signature.
	writeStart(enc, NsExt, "UBLExtensions")
	writeStart(enc, NsExt, "UBLExtension")
	writeStart(enc, NsExt, "ExtensionContent")
	writeEnd(enc, NsExt, "ExtensionContent")
	writeEnd(enc, NsExt, "UBLExtension")
	writeEnd(enc, NsExt, "UBLExtensions")

	writeCbc(enc, "UBLVersionID", "2.1")
	writeCbc(enc, "CustomizationID", "2.0")
	writeCbc(enc, "ID", doc.Number)
	writeCbc(enc, "IssueDate", doc.IssueDate.Format("2006-01-02"))
	writeCbc(enc, "IssueTime", doc.IssueDate.Format("15:04:05"))
	if shape.typeCoded {
		writeCbcWithAttr(enc, "InvoiceTypeCode", doc.Type, "listID", "0101")
	}
	if doc.NoteReason != "" {
		writeCbc(enc, "Note", doc.NoteReason)
	}
	writeCbc(enc, "DocumentCurrencyCode", doc.Currency)

	// Las notas referencian el comprobante que modifican.
	if !shape.typeCoded {
		s.writeDiscrepancyAndReference(enc, doc)
	}

	if err := s.writeSupplierParty(enc, ctx); err != nil {
		return nil, err
	}
	if err := s.writeCustomerParty(enc, doc); err != nil {
		return nil, err
	}
	s.writeTaxTotal(enc, doc)
	s.writeMonetaryTotal(enc, shape, doc)
	for i, item := range doc.Items {
		s.writeLine(enc, shape, doc.Currency, i+1, item)
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeDiscrepancyAndReference escribe cac:DiscrepancyResponse y
// cac:BillingReference de una nota (tipos 07/08).
func (s *XMLBuilderService) writeDiscrepancyAndReference(enc *xml.Encoder, doc *entity.Document) {
	writeStart(enc, NsCac, "DiscrepancyResponse")
	writeCbc(enc, "ReferenceID", doc.RefDocumentNumber)
	writeCbc(enc, "ResponseCode", "01")
	writeCbc(enc, "Description", doc.NoteReason)
	writeEnd(enc, NsCac, "DiscrepancyResponse")

	writeStart(enc, NsCac, "BillingReference")
	writeStart(enc, NsCac, "InvoiceDocumentReference")
	writeCbc(enc, "ID", doc.RefDocumentNumber)
	writeCbc(enc, "DocumentTypeCode", doc.RefDocumentType)
	writeEnd(enc, NsCac, "InvoiceDocumentReference")
	writeEnd(enc, NsCac, "BillingReference")
}

func (s *XMLBuilderService) writeSupplierParty(enc *xml.Encoder, ctx *DocumentBuildContext) error {
	doc, company := ctx.Document, ctx.Company
	writeStart(enc, NsCac, "AccountingSupplierParty")
	writeStart(enc, NsCac, "Party")

	writeStart(enc, NsCac, "PartyIdentification")
	writeCbcWithAttr(enc, "ID", doc.IssuerRUC, "schemeID", pkgsunat.IdentityTypeRUC)
	writeEnd(enc, NsCac, "PartyIdentification")

	if company.TradeName != "" {
		writeStart(enc, NsCac, "PartyName")
		writeCbc(enc, "Name", company.TradeName)
		writeEnd(enc, NsCac, "PartyName")
	}

	writeStart(enc, NsCac, "PartyLegalEntity")
	writeCbc(enc, "RegistrationName", doc.IssuerName)
	if doc.IssuerAddress != "" {
		writeStart(enc, NsCac, "RegistrationAddress")
		if company.Ubigeo != "" {
			writeCbc(enc, "ID", company.Ubigeo)
		}
		writeStart(enc, NsCac, "AddressLine")
		writeCbc(enc, "Line", doc.IssuerAddress)
		writeEnd(enc, NsCac, "AddressLine")
		writeEnd(enc, NsCac, "RegistrationAddress")
	}
	writeEnd(enc, NsCac, "PartyLegalEntity")

	writeEnd(enc, NsCac, "Party")
	writeEnd(enc, NsCac, "AccountingSupplierParty")
	return nil
}

func (s *XMLBuilderService) writeCustomerParty(enc *xml.Encoder, doc *entity.Document) error {
	writeStart(enc, NsCac, "AccountingCustomerParty")
	writeStart(enc, NsCac, "Party")

	writeStart(enc, NsCac, "PartyIdentification")
	writeCbcWithAttr(enc, "ID", doc.CustomerIdentityNumber, "schemeID", doc.CustomerIdentityType)
	writeEnd(enc, NsCac, "PartyIdentification")

	writeStart(enc, NsCac, "PartyLegalEntity")
	writeCbc(enc, "RegistrationName", doc.CustomerName)
	if doc.CustomerAddress != "" {
		writeStart(enc, NsCac, "RegistrationAddress")
		writeStart(enc, NsCac, "AddressLine")
		writeCbc(enc, "Line", doc.CustomerAddress)
		writeEnd(enc, NsCac, "AddressLine")
		writeEnd(enc, NsCac, "RegistrationAddress")
	}
	writeEnd(enc, NsCac, "PartyLegalEntity")

	writeEnd(enc, NsCac, "Party")
	writeEnd(enc, NsCac, "AccountingCustomerParty")
	return nil
}

func (s *XMLBuilderService) writeTaxTotal(enc *xml.Encoder, doc *entity.Document) {
	writeStart(enc, NsCac, "TaxTotal")
	writeCbcAmount(enc, "TaxAmount", formatDecimal(doc.IGV), doc.Currency)
	writeStart(enc, NsCac, "TaxSubtotal")
	writeCbcAmount(enc, "TaxableAmount", formatDecimal(doc.Subtotal), doc.Currency)
	writeCbcAmount(enc, "TaxAmount", formatDecimal(doc.IGV), doc.Currency)
	writeTaxCategory(enc, "")
	writeEnd(enc, NsCac, "TaxSubtotal")
	writeEnd(enc, NsCac, "TaxTotal")
}

func (s *XMLBuilderService) writeMonetaryTotal(enc *xml.Encoder, shape rootShape, doc *entity.Document) {
	writeStart(enc, NsCac, shape.total)
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(doc.Subtotal), doc.Currency)
	writeCbcAmount(enc, "TaxInclusiveAmount", formatDecimal(doc.Total), doc.Currency)
	writeCbcAmount(enc, "PayableAmount", formatDecimal(doc.Total), doc.Currency)
	writeEnd(enc, NsCac, shape.total)
}

func (s *XMLBuilderService) writeLine(enc *xml.Encoder, shape rootShape, currency string, lineNum int, item entity.DocumentItem) {
	unitCode := item.UnitCode
	if unitCode == "" {
		unitCode = pkgsunat.UnitServicio
	}
	writeStart(enc, NsCac, shape.line)
	writeCbc(enc, "ID", strconv.Itoa(lineNum))
	writeCbcWithAttr(enc, shape.quantity, formatDecimal(item.Quantity), "unitCode", unitCode)
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(item.Total), currency)

	// IGV de línea con su afectación del Catálogo 07.
	writeStart(enc, NsCac, "TaxTotal")
	writeCbcAmount(enc, "TaxAmount", formatDecimal(item.Tax), currency)
	writeStart(enc, NsCac, "TaxSubtotal")
	writeCbcAmount(enc, "TaxableAmount", formatDecimal(item.Total), currency)
	writeCbcAmount(enc, "TaxAmount", formatDecimal(item.Tax), currency)
	writeTaxCategory(enc, item.IGVAffectation)
	writeEnd(enc, NsCac, "TaxSubtotal")
	writeEnd(enc, NsCac, "TaxTotal")

	writeStart(enc, NsCac, "Item")
	writeCbc(enc, "Description", item.Description)
	writeEnd(enc, NsCac, "Item")

	writeStart(enc, NsCac, "Price")
	writeCbcAmount(enc, "PriceAmount", formatDecimal(item.UnitPrice), currency)
	writeEnd(enc, NsCac, "Price")

	writeEnd(enc, NsCac, shape.line)
}

// writeTaxCategory escribe cac:TaxCategory con el esquema IGV (Catálogo 05).
// affectation, si viene, es el código de afectación del Catálogo 07.
func writeTaxCategory(enc *xml.Encoder, affectation string) {
	writeStart(enc, NsCac, "TaxCategory")
	if affectation != "" {
		writeCbc(enc, "TaxExemptionReasonCode", affectation)
	}
	writeStart(enc, NsCac, "TaxScheme")
	writeCbc(enc, "ID", pkgsunat.TributeCodeIGV)
	writeCbc(enc, "Name", pkgsunat.TributeNameIGV)
	writeCbc(enc, "TaxTypeCode", pkgsunat.TributeTypeIGV)
	writeEnd(enc, NsCac, "TaxScheme")
	writeEnd(enc, NsCac, "TaxCategory")
}

// ── helpers de escritura ──────────────────────────────────────────────────────

func writeStart(enc *xml.Encoder, space, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: space, Local: local}})
}

func writeEnd(enc *xml.Encoder, space, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: space, Local: local}})
}

func writeCbc(enc *xml.Encoder, local, value string) {
	writeStart(enc, NsCbc, local)
	_ = enc.EncodeToken(xml.CharData(value))
	writeEnd(enc, NsCbc, local)
}

func writeCbcAmount(enc *xml.Encoder, local, value, currency string) {
	attr := []xml.Attr{}
	if currency != "" {
		attr = append(attr, xml.Attr{Name: xml.Name{Local: "currencyID"}, Value: currency})
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCbc, Local: local}, Attr: attr})
	_ = enc.EncodeToken(xml.CharData(value))
	writeEnd(enc, NsCbc, local)
}

func writeCbcWithAttr(enc *xml.Encoder, local, value, attrLocal, attrValue string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Space: NsCbc, Local: local},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrLocal}, Value: attrValue}},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	writeEnd(enc, NsCbc, local)
}

func formatDecimal(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
