package sunat

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// PackSignedXML empaqueta el XML firmado en un ZIP en memoria. SUNAT exige
// que el ZIP contenga un único archivo cuyo nombre sea la raíz del comprobante
// más ".xml" (ej. 20123456789-01-F001-00000001.xml).
func PackSignedXML(xmlBytes []byte, xmlFilename string) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("zip: XML vacío")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	fw, err := zw.Create(xmlFilename)
	if err != nil {
		return nil, fmt.Errorf("zip: crear entrada %s: %w", xmlFilename, err)
	}
	if _, err := fw.Write(xmlBytes); err != nil {
		return nil, fmt.Errorf("zip: escribir XML: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}

// UnpackSingleXML extrae el primer archivo XML de un ZIP (el CDR llega como
// un ZIP con un único ApplicationResponse dentro).
func UnpackSingleXML(zipBytes []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("zip: abrir CDR: %w", err)
	}
	for _, f := range zr.File {
		if len(f.Name) < 4 || f.Name[len(f.Name)-4:] != ".xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("zip: abrir entrada %s: %w", f.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("zip: leer entrada %s: %w", f.Name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("zip: el CDR no contiene ningún XML")
}
