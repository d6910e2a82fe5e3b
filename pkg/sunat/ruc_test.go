package sunat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// RUCs reales con dígito verificador correcto (módulo 11 SUNAT).
var validRUCs = []string{
	"20100070970",
	"20131312955",
	"10467988480",
}

func TestValidateRUC_Validos(t *testing.T) {
	for _, ruc := range validRUCs {
		assert.NoError(t, sunat.ValidateRUC(ruc), "RUC %s debe ser válido", ruc)
	}
}

func TestValidateRUC_DigitoVerificadorIncorrecto(t *testing.T) {
	// Mismo RUC válido con el último dígito alterado.
	err := sunat.ValidateRUC("20100070971")
	assert.Error(t, err, "un dígito verificador alterado debe rechazarse")
}

func TestValidateRUC_LongitudIncorrecta(t *testing.T) {
	assert.Error(t, sunat.ValidateRUC("201000709"), "menos de 11 dígitos")
	assert.Error(t, sunat.ValidateRUC("201000709701"), "más de 11 dígitos")
	assert.Error(t, sunat.ValidateRUC(""), "vacío")
}

func TestValidateRUC_PrefijoDesconocido(t *testing.T) {
	// Prefijo 99 no corresponde a ningún tipo de contribuyente.
	assert.Error(t, sunat.ValidateRUC("99100070970"))
}

func TestComputeRUCCheckDigit(t *testing.T) {
	d, err := sunat.ComputeRUCCheckDigit("2010007097")
	require.NoError(t, err)
	assert.Equal(t, byte('0'), d)
}

func TestValidateDNI(t *testing.T) {
	assert.NoError(t, sunat.ValidateDNI("46789123"))
	assert.Error(t, sunat.ValidateDNI("4678912"), "7 dígitos")
	assert.Error(t, sunat.ValidateDNI("467891234"), "9 dígitos")
	assert.Error(t, sunat.ValidateDNI("4678912A"), "caracteres no numéricos")
}
