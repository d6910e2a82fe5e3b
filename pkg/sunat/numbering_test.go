package sunat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

func TestValidateSeries(t *testing.T) {
	cases := []struct {
		docType string
		series  string
		ok      bool
	}{
		{sunat.DocTypeFactura, "F001", true},
		{sunat.DocTypeFactura, "B001", false},
		{sunat.DocTypeBoleta, "B001", true},
		{sunat.DocTypeBoleta, "F001", false},
		{sunat.DocTypeNotaCredito, "F001", true},
		{sunat.DocTypeNotaCredito, "B205", true},
		{sunat.DocTypeNotaDebito, "B001", true},
		{sunat.DocTypeFactura, "F01", false},
		{sunat.DocTypeFactura, "F0001", false},
		{sunat.DocTypeFactura, "f001", false},
		{"99", "F001", false},
	}
	for _, c := range cases {
		err := sunat.ValidateSeries(c.docType, c.series)
		if c.ok {
			assert.NoError(t, err, "tipo %s serie %s", c.docType, c.series)
		} else {
			assert.Error(t, err, "tipo %s serie %s", c.docType, c.series)
		}
	}
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "B001-00000001", sunat.FormatDocumentNumber("B001", 1))
	assert.Equal(t, "F001-00012345", sunat.FormatDocumentNumber("F001", 12345))
	assert.Equal(t, "F001-99999999", sunat.FormatDocumentNumber("F001", 99999999))
}

func TestFileStem(t *testing.T) {
	stem := sunat.FileStem("20123456789", sunat.DocTypeBoleta, "B001-00000001")
	assert.Equal(t, "20123456789-03-B001-00000001", stem)
}

func TestIsValidCode(t *testing.T) {
	assert.True(t, sunat.IsValidCode("07", sunat.AfectacionGravado))
	assert.True(t, sunat.IsValidCode("06", sunat.IdentityTypeRUC))
	assert.False(t, sunat.IsValidCode("07", "99"))
	assert.False(t, sunat.IsValidCode("XX", "10"), "catálogo desconocido")
}
