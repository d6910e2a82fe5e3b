// Package pdf implementa la representación impresa del comprobante de pago
// electrónico (Resolución 007-2025/SUNAT).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RUC  │  Tipo + Serie-Número + Fecha │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección                                           │
//	│  ADQUIRENTE: Nombre + DNI/RUC                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | IGV | Importe          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Op. gravadas / IGV / IMPORTE TOTAL                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR + leyenda legal                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

var _ billing.PDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 140, Green: 21, Blue: 21}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Generate genera el PDF del comprobante y devuelve sus bytes.
func (g *MarotoPDFGenerator) Generate(doc *entity.Document, company *entity.Company) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(doc.Type), true).
		WithAuthor(company.BusinessName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(company))
	m.AddRows(adquirenteRow(doc))
	if doc.RefDocumentNumber != "" {
		m.AddRows(referenciaRow(doc))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de ítems
	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(doc.Items) {
		m.AddRows(r)
	}

	// Totales
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	// Footer
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(doc, company) {
		m.AddRows(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// documentTitle devuelve la denominación impresa según el catálogo 01.
func documentTitle(docType string) string {
	switch docType {
	case sunat.DocTypeFactura:
		return "FACTURA ELECTRÓNICA"
	case sunat.DocTypeBoleta:
		return "BOLETA DE VENTA ELECTRÓNICA"
	case sunat.DocTypeNotaCredito:
		return "NOTA DE CRÉDITO ELECTRÓNICA"
	case sunat.DocTypeNotaDebito:
		return "NOTA DE DÉBITO ELECTRÓNICA"
	default:
		return "COMPROBANTE ELECTRÓNICO"
	}
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: Razón social + RUC (izq) y denominación + Serie-Número + Fecha (der).
func headerRow(doc *entity.Document, company *entity.Company) core.Row {
	fecha := doc.IssueDate.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.BusinessName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RUC: "+company.RUC, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(documentTitle(doc.Type), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(doc.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha de emisión: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// emisorRow: datos del emisor (empresa).
func emisorRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Email: %s",
				nonEmpty(company.Address, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// adquirenteRow: datos del receptor, con el tipo de documento del catálogo 06.
func adquirenteRow(doc *entity.Document) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ADQUIRENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.CustomerName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s: %s   |   Dirección: %s",
				identityLabel(doc.CustomerIdentityType),
				doc.CustomerIdentityNumber,
				nonEmpty(doc.CustomerAddress, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// referenciaRow: comprobante modificado por una nota de crédito/débito.
func referenciaRow(doc *entity.Document) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New("DOCUMENTO QUE SE MODIFICA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s %s   |   Motivo: %s",
				documentTitle(doc.RefDocumentType), doc.RefDocumentNumber, doc.NoteReason,
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

func identityLabel(identityType string) string {
	switch identityType {
	case sunat.IdentityTypeDNI:
		return "DNI"
	case sunat.IdentityTypeRUC:
		return "RUC"
	default:
		return "Doc. " + identityType
	}
}

// tableHeaderRow: cabecera de la tabla de ítems.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("IGV", 2, align.Right),
		h("Importe", 2, align.Right),
	)
}

// tableItemRows: una fila por línea del comprobante.
func tableItemRows(items []entity.DocumentItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				it.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				it.UnitPrice.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				it.Tax.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				it.Total.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha, en la moneda del comprobante.
func totalsRow(doc *entity.Document) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	cur := doc.Currency + " "
	return row.New(26).Add(
		col.New(3),
		col.New(4).Add(
			label("Op. gravadas:"),
			label("IGV:"),
			grandLabel("IMPORTE TOTAL:"),
		),
		col.New(4).Add(
			value(cur+doc.Subtotal.StringFixed(2)),
			value(cur+doc.IGV.StringFixed(2)),
			grandValue(cur+doc.Total.StringFixed(2)),
		),
		col.New(1),
	)
}

// footerRows: código QR + leyenda legal. El QR lleva los campos mínimos
// separados por pipe: RUC|tipo|serie|correlativo|IGV|total|fecha|tipoDocAdq|numDocAdq.
func footerRows(doc *entity.Document, company *entity.Company) []core.Row {
	qrData := strings.Join([]string{
		company.RUC, doc.Type, doc.Series,
		fmt.Sprintf("%d", doc.Correlative),
		doc.IGV.StringFixed(2), doc.Total.StringFixed(2),
		doc.IssueDate.Format("2006-01-02"),
		doc.CustomerIdentityType, doc.CustomerIdentityNumber,
	}, "|")

	rows := []core.Row{
		row.New(50).Add(
			col.New(4).Add(code.NewQr(qrData, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Consulte este comprobante en el portal de SUNAT\no escaneando el código QR.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Representación impresa de la\n"+documentTitle(doc.Type), props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 22,
					Left: 3, Color: colorPrimary,
				}),
			),
		),
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Comprobante de pago electrónico emitido conforme a la normativa de SUNAT "+
				"(Resolución de Superintendencia N° 097-2012/SUNAT y modificatorias). "+
				"Conserve este documento como sustento tributario.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
