package signer

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// testPEMMaterial genera un certificado autofirmado con su llave RSA y lo
// devuelve como PEM concatenado (certificado + llave), el formato que acepta
// LoadFromMaterial.
func testPEMMaterial(t *testing.T) []byte {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "Comercial Andina S.A.C.",
			Organization: []string{"Comercial Andina"},
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, pem.Encode(&buf, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}))
	return []byte(buf.String())
}

const unsignedXML = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
    xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
    xmlns:ext="urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2">
  <ext:UBLExtensions>
    <ext:UBLExtension>
      <ext:ExtensionContent></ext:ExtensionContent>
    </ext:UBLExtension>
  </ext:UBLExtensions>
  <cbc:ID>F001-00000001</cbc:ID>
</Invoice>`

func TestSign_InyectaFirmaEnExtensionContent(t *testing.T) {
	svc := NewDigitalSignatureService()
	cert := &entity.Certificate{
		ID:        "cert-1",
		CompanyID: "company-1",
		Material:  testPEMMaterial(t),
	}

	signed, err := svc.Sign(context.Background(), []byte(unsignedXML), cert)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signed))
	root := doc.Root()
	require.NotNil(t, root)

	// La firma cuelga del ExtensionContent que antes estaba vacío.
	sig := doc.FindElement("//ext:ExtensionContent/ds:Signature")
	require.NotNil(t, sig, "el XML firmado debe llevar ds:Signature dentro de ext:ExtensionContent")
	assert.Equal(t, SignatureID, sig.SelectAttrValue("Id", ""))

	out := string(signed)
	assert.True(t, strings.Contains(out, "SignatureValue"))
	assert.True(t, strings.Contains(out, "X509Certificate"))
	assert.True(t, strings.Contains(out, "DigestValue"))
	// El contenido original sigue intacto.
	assert.True(t, strings.Contains(out, "F001-00000001"))
}

func TestSign_SinPlaceholderFalla(t *testing.T) {
	svc := NewDigitalSignatureService()
	cert := &entity.Certificate{Material: testPEMMaterial(t)}

	_, err := svc.Sign(context.Background(), []byte(`<Invoice><ID>F001-1</ID></Invoice>`), cert)
	assert.Error(t, err)
}

func TestSign_EntradasInvalidas(t *testing.T) {
	svc := NewDigitalSignatureService()

	_, err := svc.Sign(context.Background(), nil, &entity.Certificate{Material: testPEMMaterial(t)})
	assert.Error(t, err)

	_, err = svc.Sign(context.Background(), []byte(unsignedXML), nil)
	assert.Error(t, err)

	_, err = svc.Sign(context.Background(), []byte(unsignedXML), &entity.Certificate{Material: []byte("basura")})
	assert.Error(t, err)
}

func TestDescribeCertificate(t *testing.T) {
	info, err := DescribeCertificate(testPEMMaterial(t), "")
	require.NoError(t, err)

	assert.Equal(t, "Comercial Andina S.A.C.", info.Subject)
	assert.True(t, info.IssuedAt.Before(time.Now()))
	assert.True(t, info.ExpiresAt.After(time.Now()))

	_, err = DescribeCertificate(nil, "")
	assert.Error(t, err)
}
