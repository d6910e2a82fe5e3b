// Carga de certificados desde material en memoria: PEM (certificado + llave)
// o PKCS#12 (.p12/.pfx).

package signer

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"golang.org/x/crypto/pkcs12"
)

// CertInfo metadatos extraídos del certificado hoja.
type CertInfo struct {
	Authority string // CN del emisor del certificado
	Subject   string // CN del titular
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// LoadFromMaterial decodifica el material del certificado. Si empieza con un
// bloque PEM asume certificado y llave concatenados; en otro caso lo trata
// como PKCS#12. El password puede ser vacío para PEM sin cifrar.
func LoadFromMaterial(material []byte, password string) (tls.Certificate, error) {
	if len(material) == 0 {
		return tls.Certificate{}, fmt.Errorf("certificado: material vacío")
	}
	if bytes.HasPrefix(bytes.TrimSpace(material), []byte("-----BEGIN")) {
		cert, err := tls.X509KeyPair(material, material)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("certificado PEM: %w", err)
		}
		return cert, nil
	}
	priv, cert, err := pkcs12.Decode(material, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("certificado PKCS#12: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// DescribeCertificate decodifica el material y devuelve los metadatos del
// certificado hoja (vigencia y autoridad emisora).
func DescribeCertificate(material []byte, password string) (*CertInfo, error) {
	cert, err := LoadFromMaterial(material, password)
	if err != nil {
		return nil, err
	}
	leaf := cert.Leaf
	if leaf == nil {
		if len(cert.Certificate) == 0 {
			return nil, fmt.Errorf("certificado: sin certificado hoja")
		}
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("certificado: parsear hoja: %w", err)
		}
	}
	return &CertInfo{
		Authority: leaf.Issuer.CommonName,
		Subject:   leaf.Subject.CommonName,
		IssuedAt:  leaf.NotBefore,
		ExpiresAt: leaf.NotAfter,
	}, nil
}
