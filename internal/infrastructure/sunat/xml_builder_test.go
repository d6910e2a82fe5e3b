package sunat

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	pkgsunat "github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

func builderCompany() *entity.Company {
	return &entity.Company{
		ID:           "company-1",
		RUC:          "20100070970",
		BusinessName: "Comercial Andina S.A.C.",
		TradeName:    "Andina",
		Address:      "Av. Arequipa 1234, Lima",
		Ubigeo:       "150101",
	}
}

func builderDocument(docType, series, number string) *entity.Document {
	return &entity.Document{
		ID:          "doc-1",
		CompanyID:   "company-1",
		Type:        docType,
		Series:      series,
		Correlative: 1,
		Number:      number,
		IssueDate:   time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
		Currency:    pkgsunat.CurrencyPEN,

		IssuerRUC:     "20100070970",
		IssuerName:    "Comercial Andina S.A.C.",
		IssuerAddress: "Av. Arequipa 1234, Lima",

		CustomerIdentityType:   pkgsunat.IdentityTypeDNI,
		CustomerIdentityNumber: "12345678",
		CustomerName:           "Juan Pérez",

		Items: []entity.DocumentItem{{
			Description:    "Servicio de consultoría",
			UnitCode:       pkgsunat.UnitServicio,
			Quantity:       decimal.NewFromInt(1),
			UnitPrice:      decimal.NewFromInt(100),
			IGVAffectation: pkgsunat.AfectacionGravado,
			Tax:            decimal.NewFromInt(18),
			Total:          decimal.NewFromInt(100),
		}},
		Subtotal: decimal.NewFromInt(100),
		IGV:      decimal.NewFromInt(18),
		Total:    decimal.NewFromInt(118),
		State:    entity.EstadoPendiente,
	}
}

// localTag devuelve el nombre local del elemento (sin prefijo de namespace).
func localTag(el *etree.Element) string {
	tag := el.Tag
	if idx := strings.Index(tag, ":"); idx != -1 {
		tag = tag[idx+1:]
	}
	return tag
}

func parseBuilt(t *testing.T, xmlBytes []byte) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))
	root := doc.Root()
	require.NotNil(t, root)
	return root
}

func TestBuild_FacturaUBL(t *testing.T) {
	svc := NewXMLBuilderService()
	out, err := svc.Build(&DocumentBuildContext{
		Company:  builderCompany(),
		Document: builderDocument(pkgsunat.DocTypeFactura, "F001", "F001-00000001"),
	})
	require.NoError(t, err)

	root := parseBuilt(t, out)
	assert.Equal(t, "Invoice", localTag(root))
	assert.Equal(t, "F001-00000001", childTextLocal(root, "ID"))
	assert.Equal(t, pkgsunat.DocTypeFactura, childTextLocal(root, "InvoiceTypeCode"))
	assert.Equal(t, "2026-08-29", childTextLocal(root, "IssueDate"))
	assert.Equal(t, pkgsunat.CurrencyPEN, childTextLocal(root, "DocumentCurrencyCode"))

	// Placeholder de firma: el primer ExtensionContent debe estar vacío.
	ext := findChildLocal(root, "UBLExtensions")
	require.NotNil(t, ext)
	ublExt := findChildLocal(ext, "UBLExtension")
	require.NotNil(t, ublExt)
	extContent := findChildLocal(ublExt, "ExtensionContent")
	require.NotNil(t, extContent)
	assert.Empty(t, extContent.ChildElements())

	supplier := findChildLocal(root, "AccountingSupplierParty")
	require.NotNil(t, supplier)
	party := findChildLocal(supplier, "Party")
	require.NotNil(t, party)
	partyID := findChildLocal(party, "PartyIdentification")
	require.NotNil(t, partyID)
	supplierID := findChildLocal(partyID, "ID")
	require.NotNil(t, supplierID)
	assert.Equal(t, "20100070970", supplierID.Text())
	assert.Equal(t, pkgsunat.IdentityTypeRUC, supplierID.SelectAttrValue("schemeID", ""))

	total := findChildLocal(root, "LegalMonetaryTotal")
	require.NotNil(t, total)
	assert.Equal(t, "118.00", childTextLocal(total, "PayableAmount"))

	line := findChildLocal(root, "InvoiceLine")
	require.NotNil(t, line)
	assert.Equal(t, "1", childTextLocal(line, "ID"))
	qty := findChildLocal(line, "InvoicedQuantity")
	require.NotNil(t, qty)
	assert.Equal(t, pkgsunat.UnitServicio, qty.SelectAttrValue("unitCode", ""))
}

func TestBuild_NotaDeCreditoConReferencia(t *testing.T) {
	svc := NewXMLBuilderService()
	doc := builderDocument(pkgsunat.DocTypeNotaCredito, "B001", "B001-00000005")
	doc.RefDocumentType = pkgsunat.DocTypeBoleta
	doc.RefDocumentNumber = "B001-00000001"
	doc.NoteReason = "Anulación de la operación"

	out, err := svc.Build(&DocumentBuildContext{Company: builderCompany(), Document: doc})
	require.NoError(t, err)

	root := parseBuilt(t, out)
	assert.Equal(t, "CreditNote", localTag(root))
	// Las notas no llevan InvoiceTypeCode; referencian el comprobante original.
	assert.Empty(t, childTextLocal(root, "InvoiceTypeCode"))

	discrepancy := findChildLocal(root, "DiscrepancyResponse")
	require.NotNil(t, discrepancy)
	assert.Equal(t, "B001-00000001", childTextLocal(discrepancy, "ReferenceID"))
	assert.Equal(t, "Anulación de la operación", childTextLocal(discrepancy, "Description"))

	billingRef := findChildLocal(root, "BillingReference")
	require.NotNil(t, billingRef)
	invoiceRef := findChildLocal(billingRef, "InvoiceDocumentReference")
	require.NotNil(t, invoiceRef)
	assert.Equal(t, pkgsunat.DocTypeBoleta, childTextLocal(invoiceRef, "DocumentTypeCode"))

	assert.NotNil(t, findChildLocal(root, "CreditNoteLine"))
}

func TestBuild_NotaDeDebitoUsaRequestedMonetaryTotal(t *testing.T) {
	svc := NewXMLBuilderService()
	doc := builderDocument(pkgsunat.DocTypeNotaDebito, "F001", "F001-00000002")
	doc.RefDocumentType = pkgsunat.DocTypeFactura
	doc.RefDocumentNumber = "F001-00000001"
	doc.NoteReason = "Intereses por mora"

	out, err := svc.Build(&DocumentBuildContext{Company: builderCompany(), Document: doc})
	require.NoError(t, err)

	root := parseBuilt(t, out)
	assert.Equal(t, "DebitNote", localTag(root))
	assert.NotNil(t, findChildLocal(root, "RequestedMonetaryTotal"))
	assert.NotNil(t, findChildLocal(root, "DebitNoteLine"))
}

func TestBuild_TipoDesconocido(t *testing.T) {
	svc := NewXMLBuilderService()
	doc := builderDocument("99", "X001", "X001-00000001")
	_, err := svc.Build(&DocumentBuildContext{Company: builderCompany(), Document: doc})
	assert.Error(t, err)

	_, err = svc.Build(nil)
	assert.Error(t, err)
}

func TestBuildVoidedDocumentsXML(t *testing.T) {
	refDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	out, err := BuildVoidedDocumentsXML(builderCompany(), "RA-20260829-1", refDate, []VoidedItem{
		{DocType: pkgsunat.DocTypeBoleta, Series: "B001", Number: "00000001", Reason: "Error en datos del adquirente"},
		{DocType: pkgsunat.DocTypeFactura, Series: "F001", Number: "00000007", Reason: "Operación no realizada"},
	})
	require.NoError(t, err)

	root := parseBuilt(t, out)
	assert.Equal(t, "VoidedDocuments", localTag(root))
	assert.Equal(t, "RA-20260829-1", childTextLocal(root, "ID"))
	assert.Equal(t, "2026-08-28", childTextLocal(root, "ReferenceDate"))
	supplier := findChildLocal(root, "AccountingSupplierParty")
	require.NotNil(t, supplier)
	assert.Equal(t, "20100070970", childTextLocal(supplier, "CustomerAssignedAccountID"))

	var lines []*etree.Element
	for _, child := range root.ChildElements() {
		if localTag(child) == "VoidedDocumentsLine" {
			lines = append(lines, child)
		}
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "1", childTextLocal(lines[0], "LineID"))
	assert.Equal(t, "B001", childTextLocal(lines[0], "DocumentSerialID"))
	assert.Equal(t, "00000007", childTextLocal(lines[1], "DocumentNumberID"))

	_, err = BuildVoidedDocumentsXML(builderCompany(), "RA-20260829-2", refDate, nil)
	assert.Error(t, err)
}
