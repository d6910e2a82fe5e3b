// Servicio de firma digital XMLDSig enveloped para comprobantes SUNAT.
// Inyecta <ds:Signature> en el <ext:ExtensionContent> vacío del XML.

package signer

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// DigitalSignatureService firma XML UBL con el certificado del emisor.
type DigitalSignatureService struct{}

// NewDigitalSignatureService crea el servicio.
func NewDigitalSignatureService() *DigitalSignatureService {
	return &DigitalSignatureService{}
}

// Sign firma el XML con firma enveloped (Reference URI vacía: el digest cubre
// el documento completo) y la inyecta en el primer ext:ExtensionContent.
func (s *DigitalSignatureService) Sign(_ context.Context, xmlContent []byte, cert *entity.Certificate) ([]byte, error) {
	if len(xmlContent) == 0 {
		return nil, fmt.Errorf("signer: XML vacío")
	}
	if cert == nil {
		return nil, fmt.Errorf("signer: certificado nulo")
	}
	tlsCert, err := LoadFromMaterial(cert.Material, cert.Password)
	if err != nil {
		return nil, err
	}
	priv, ok := tlsCert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signer: el certificado debe incluir llave privada RSA")
	}
	x509Cert, err := x509.ParseCertificate(tlsCert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("signer: parsear certificado: %w", err)
	}

	// 1) Digest del documento completo (C14N).
	canonicalDoc, err := canonicalizeXML(xmlContent)
	if err != nil {
		canonicalDoc = xmlContent
	}
	docDigest := sha256.Sum256(canonicalDoc)
	docDigestB64 := base64.StdEncoding.EncodeToString(docDigest[:])

	// 2) SignedInfo canónico y su firma RSA-SHA256.
	signedInfoXML := buildSignedInfo(docDigestB64)
	canonicalSignedInfo, err := canonicalizeXML([]byte(signedInfoXML))
	if err != nil {
		canonicalSignedInfo = []byte(signedInfoXML)
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA256, signHash[:])
	if err != nil {
		return nil, fmt.Errorf("signer: firmar SignedInfo: %w", err)
	}

	// 3) Nodo ds:Signature completo con el certificado embebido.
	signatureXML := buildSignature(
		signedInfoXML,
		base64.StdEncoding.EncodeToString(signatureValue),
		base64.StdEncoding.EncodeToString(x509Cert.Raw),
	)

	// 4) Inyección en el placeholder.
	return injectSignature(xmlContent, signatureXML)
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func buildSignedInfo(docDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + NamespaceDS + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgRSASHA256 + `"/>`)
	sb.WriteString(`<ds:Reference URI="">`)
	sb.WriteString(`<ds:Transforms><ds:Transform Algorithm="` + TransformEnveloped + `"/></ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func buildSignature(signedInfoXML, signatureValueB64, certB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" Id="` + SignatureID + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<ds:SignatureValue>` + signatureValueB64 + `</ds:SignatureValue>`)
	sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + certB64 + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String()
}

// injectSignature busca el primer ext:ExtensionContent vacío y cuelga ahí el
// nodo ds:Signature.
func injectSignature(xmlContent []byte, signatureXML string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlContent); err != nil {
		return nil, fmt.Errorf("signer: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("signer: documento sin raíz")
	}

	var extContent *etree.Element
	for _, ublExt := range root.ChildElements() {
		if localTag(ublExt) != "UBLExtensions" {
			continue
		}
		for _, ext := range ublExt.ChildElements() {
			if localTag(ext) != "UBLExtension" {
				continue
			}
			for _, ec := range ext.ChildElements() {
				if localTag(ec) == "ExtensionContent" && len(ec.ChildElements()) == 0 {
					extContent = ec
					break
				}
			}
			if extContent != nil {
				break
			}
		}
		break
	}
	if extContent == nil {
		return nil, fmt.Errorf("signer: no se encontró ext:ExtensionContent vacío para la firma")
	}

	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("signer: parsear Signature: %w", err)
	}
	if sigRoot := sigDoc.Root(); sigRoot != nil {
		extContent.AddChild(sigRoot)
	}
	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("signer: serializar XML firmado: %w", err)
	}
	return out.Bytes(), nil
}

func localTag(el *etree.Element) string {
	tag := el.Tag
	if idx := strings.Index(tag, ":"); idx != -1 {
		tag = tag[idx+1:]
	}
	return tag
}
