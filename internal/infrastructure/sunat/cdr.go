package sunat

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// ParseCDR interpreta la constancia de recepción: un ZIP con un único
// ApplicationResponse dentro. Extrae el código y la descripción de
// cac:DocumentResponse/cac:Response y conserva el ZIP crudo para auditoría.
func ParseCDR(cdrZip []byte) (*entity.Receipt, error) {
	xmlBytes, err := UnpackSingleXML(cdrZip)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("cdr: parsear ApplicationResponse: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("cdr: documento sin raíz")
	}

	response := findChildLocal(root, "DocumentResponse")
	if response != nil {
		response = findChildLocal(response, "Response")
	}
	if response == nil {
		return nil, fmt.Errorf("cdr: ApplicationResponse sin cac:DocumentResponse/cac:Response")
	}
	code := childTextLocal(response, "ResponseCode")
	if code == "" {
		return nil, fmt.Errorf("cdr: respuesta sin cbc:ResponseCode")
	}
	return &entity.Receipt{
		ResponseCode: code,
		Description:  childTextLocal(response, "Description"),
		RawCDR:       cdrZip,
		ReceivedAt:   time.Now(),
	}, nil
}

// findChildLocal busca el primer hijo cuyo nombre local (sin prefijo) coincida.
func findChildLocal(el *etree.Element, local string) *etree.Element {
	for _, child := range el.ChildElements() {
		tag := child.Tag
		if idx := strings.Index(tag, ":"); idx != -1 {
			tag = tag[idx+1:]
		}
		if tag == local {
			return child
		}
	}
	return nil
}

func childTextLocal(el *etree.Element, local string) string {
	if child := findChildLocal(el, local); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}
