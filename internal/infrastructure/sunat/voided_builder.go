package sunat

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	pkgsunat "github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// Namespaces del resumen de bajas (esquemas peruanos de SUNAT).
const (
	NsVoided = "urn:sunat:names:specification:ubl:peru:schema:xsd:VoidedDocuments-1"
	NsSac    = "urn:sunat:names:specification:ubl:peru:schema:xsd:SunatAggregateComponents-1"
)

// BuildVoidedDocumentsXML genera la comunicación de baja (VoidedDocuments)
// que se envía por sendSummary. voidedID tiene la forma RA-AAAAMMDD-N y
// referenceDate es la fecha de emisión de los comprobantes dados de baja.
func BuildVoidedDocumentsXML(company *entity.Company, voidedID string, referenceDate time.Time, items []VoidedItem) ([]byte, error) {
	if company == nil || len(items) == 0 {
		return nil, fmt.Errorf("sunat: comunicación de baja sin emisor o sin líneas")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "VoidedDocuments"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: NsVoided},
			{Name: xml.Name{Local: "xmlns:cac"}, Value: NsCac},
			{Name: xml.Name{Local: "xmlns:cbc"}, Value: NsCbc},
			{Name: xml.Name{Local: "xmlns:ds"}, Value: NsDs},
			{Name: xml.Name{Local: "xmlns:ext"}, Value: NsExt},
			{Name: xml.Name{Local: "xmlns:sac"}, Value: NsSac},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	writeStart(enc, NsExt, "UBLExtensions")
	writeStart(enc, NsExt, "UBLExtension")
	writeStart(enc, NsExt, "ExtensionContent")
	writeEnd(enc, NsExt, "ExtensionContent")
	writeEnd(enc, NsExt, "UBLExtension")
	writeEnd(enc, NsExt, "UBLExtensions")

	writeCbc(enc, "UBLVersionID", "2.0")
	writeCbc(enc, "CustomizationID", "1.0")
	writeCbc(enc, "ID", voidedID)
	writeCbc(enc, "ReferenceDate", referenceDate.Format("2006-01-02"))
	writeCbc(enc, "IssueDate", time.Now().Format("2006-01-02"))

	writeStart(enc, NsCac, "AccountingSupplierParty")
	writeCbc(enc, "CustomerAssignedAccountID", company.RUC)
	writeCbc(enc, "AdditionalAccountID", pkgsunat.IdentityTypeRUC)
	writeStart(enc, NsCac, "Party")
	writeStart(enc, NsCac, "PartyLegalEntity")
	writeCbc(enc, "RegistrationName", company.BusinessName)
	writeEnd(enc, NsCac, "PartyLegalEntity")
	writeEnd(enc, NsCac, "Party")
	writeEnd(enc, NsCac, "AccountingSupplierParty")

	for i, it := range items {
		writeStart(enc, NsSac, "VoidedDocumentsLine")
		writeCbc(enc, "LineID", strconv.Itoa(i+1))
		writeCbc(enc, "DocumentTypeCode", it.DocType)
		writeSac(enc, "DocumentSerialID", it.Series)
		writeSac(enc, "DocumentNumberID", it.Number)
		writeSac(enc, "VoidReasonDescription", it.Reason)
		writeEnd(enc, NsSac, "VoidedDocumentsLine")
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSac(enc *xml.Encoder, local, value string) {
	writeStart(enc, NsSac, local)
	_ = enc.EncodeToken(xml.CharData(value))
	writeEnd(enc, NsSac, local)
}
