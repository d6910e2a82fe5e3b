package usecase_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/application/usecase"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

type fakeCompanyStore struct {
	byID map[string]*entity.Company
}

func newFakeCompanyStore(companies ...*entity.Company) *fakeCompanyStore {
	s := &fakeCompanyStore{byID: map[string]*entity.Company{}}
	for _, c := range companies {
		s.byID[c.ID] = c
	}
	return s
}

func (s *fakeCompanyStore) Create(_ context.Context, c *entity.Company) error {
	s.byID[c.ID] = c
	return nil
}

func (s *fakeCompanyStore) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return s.byID[id], nil
}

func (s *fakeCompanyStore) GetByRUC(_ context.Context, ruc string) (*entity.Company, error) {
	for _, c := range s.byID {
		if c.RUC == ruc {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeCompanyStore) List(_ context.Context, _, _ int) ([]*entity.Company, error) {
	out := make([]*entity.Company, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeCompanyStore) Update(_ context.Context, c *entity.Company) error {
	s.byID[c.ID] = c
	return nil
}

type fakeCertStore struct {
	byCompany map[string]*entity.Certificate
}

func newFakeCertStore() *fakeCertStore {
	return &fakeCertStore{byCompany: map[string]*entity.Certificate{}}
}

func (s *fakeCertStore) GetByCompany(_ context.Context, companyID string) (*entity.Certificate, error) {
	return s.byCompany[companyID], nil
}

func (s *fakeCertStore) Put(_ context.Context, cert *entity.Certificate) error {
	s.byCompany[cert.CompanyID] = cert
	return nil
}

const certIssuerCN = "Comercial Andina S.A.C."

// certMaterialBase64 genera un certificado autofirmado (PEM concatenado con su
// llave) y lo devuelve en base64, el formato del request de carga.
func certMaterialBase64(t *testing.T) string {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   certIssuerCN,
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
	return base64.StdEncoding.EncodeToString([]byte(buf.String()))
}

func testIssuingCompany() *entity.Company {
	now := time.Now()
	return &entity.Company{
		ID:           "00000000-0000-0000-0000-0000000000aa",
		RUC:          "20100070970",
		BusinessName: "Comercial Andina S.A.C.",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUploadCertificate_AutoridadDelOperadorPrevalece(t *testing.T) {
	company := testIssuingCompany()
	certs := newFakeCertStore()
	uc := usecase.NewCompanyUseCase(newFakeCompanyStore(company), certs)

	out, err := uc.UploadCertificate(context.Background(), company.ID, dto.UploadCertificateRequest{
		Material:  certMaterialBase64(t),
		Authority: "LLAMA.PE S.A.",
	})
	require.NoError(t, err)

	assert.Equal(t, "LLAMA.PE S.A.", out.Authority)
	stored, err := certs.GetByCompany(context.Background(), company.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "LLAMA.PE S.A.", stored.Authority)
}

func TestUploadCertificate_SinAutoridadUsaLaDelCertificado(t *testing.T) {
	company := testIssuingCompany()
	uc := usecase.NewCompanyUseCase(newFakeCompanyStore(company), newFakeCertStore())

	out, err := uc.UploadCertificate(context.Background(), company.ID, dto.UploadCertificateRequest{
		Material: certMaterialBase64(t),
	})
	require.NoError(t, err)

	// Autofirmado: el emisor es el propio titular.
	assert.Equal(t, certIssuerCN, out.Authority)
	assert.True(t, out.ExpiresAt.After(out.IssuedAt), "la vigencia sale del certificado")
}

func TestUploadCertificate_MaterialInvalido(t *testing.T) {
	company := testIssuingCompany()
	uc := usecase.NewCompanyUseCase(newFakeCompanyStore(company), newFakeCertStore())

	_, err := uc.UploadCertificate(context.Background(), company.ID, dto.UploadCertificateRequest{
		Material: "#### no es base64 ####",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UploadCertificate(context.Background(), "empresa-inexistente", dto.UploadCertificateRequest{
		Material: certMaterialBase64(t),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
