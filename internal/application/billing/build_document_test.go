package billing_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	infrasunat "github.com/jhoicas/facturacion-sunat/internal/infrastructure/sunat"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

func newBuildEnv() (*billing.BuildDocumentUseCase, *fakeDocRepo, *fakeSeqRepo) {
	docRepo := newFakeDocRepo()
	seqRepo := newFakeSeqRepo()
	uc := billing.NewBuildDocumentUseCase(
		newFakeCompanyRepo(testCompany()),
		docRepo,
		billing.NewNumberAllocator(seqRepo),
		infrasunat.NewXMLBuilderService(),
	)
	return uc, docRepo, seqRepo
}

func boletaRequest() dto.CreateDocumentRequest {
	return dto.CreateDocumentRequest{
		Type:     sunat.DocTypeBoleta,
		Series:   "B001",
		Currency: sunat.CurrencyPEN,
		Customer: dto.DocumentCustomer{
			IdentityType:   sunat.IdentityTypeDNI,
			IdentityNumber: "12345678",
			Name:           "Juan Pérez",
		},
		Items: []dto.DocumentItemRequest{{
			Description:    "Servicio de consultoría",
			UnitCode:       sunat.UnitServicio,
			Quantity:       decimal.NewFromInt(1),
			UnitPrice:      decimal.NewFromInt(100),
			IGVAffectation: sunat.AfectacionGravado,
			Tax:            decimal.NewFromInt(18),
			Total:          decimal.NewFromInt(100),
		}},
	}
}

func TestBuild_NumeracionCorrelativa(t *testing.T) {
	uc, _, _ := newBuildEnv()
	ctx := context.Background()

	for i, want := range []string{"B001-00000001", "B001-00000002", "B001-00000003"} {
		out, err := uc.Build(ctx, testCompanyID, boletaRequest())
		require.NoError(t, err, "emisión %d", i+1)
		assert.Equal(t, want, out.Number)
		assert.Equal(t, entity.EstadoPendiente, out.State)
	}
}

// Una petición inválida no consume números de la serie.
func TestBuild_EntradaInvalidaNoConsumeCorrelativo(t *testing.T) {
	uc, _, seqRepo := newBuildEnv()
	ctx := context.Background()

	// Factura exige adquirente con RUC; un DNI es inválido.
	in := boletaRequest()
	in.Type = sunat.DocTypeFactura
	in.Series = "F001"
	_, err := uc.Build(ctx, testCompanyID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	seq, err := seqRepo.Current(ctx, testCompanyID, sunat.DocTypeFactura, "F001")
	require.NoError(t, err)
	assert.Zero(t, seq)

	// La siguiente emisión válida de la serie arranca en 1.
	in.Customer = dto.DocumentCustomer{
		IdentityType:   sunat.IdentityTypeRUC,
		IdentityNumber: testRUC,
		Name:           "Comercial Andina S.A.C.",
	}
	out, err := uc.Build(ctx, testCompanyID, in)
	require.NoError(t, err)
	assert.Equal(t, "F001-00000001", out.Number)
}

func TestBuild_NotaDeCreditoExigeReferencia(t *testing.T) {
	uc, _, _ := newBuildEnv()
	ctx := context.Background()

	in := boletaRequest()
	in.Type = sunat.DocTypeNotaCredito
	_, err := uc.Build(ctx, testCompanyID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.RefDocumentType = sunat.DocTypeBoleta
	in.RefDocumentNumber = "B001-00000001"
	in.NoteReason = "Anulación de la operación"
	out, err := uc.Build(ctx, testCompanyID, in)
	require.NoError(t, err)
	assert.Equal(t, "B001-00000001", out.Number)
}

func TestBuild_TotalesAgregadosDeLinea(t *testing.T) {
	uc, docRepo, _ := newBuildEnv()
	ctx := context.Background()

	in := boletaRequest()
	in.Items = append(in.Items, dto.DocumentItemRequest{
		Description:    "Licencia anual",
		UnitCode:       sunat.UnitUnidad,
		Quantity:       decimal.NewFromInt(3),
		UnitPrice:      decimal.RequireFromString("16.95"),
		IGVAffectation: sunat.AfectacionGravado,
		Tax:            decimal.RequireFromString("9.15"),
		Total:          decimal.RequireFromString("50.85"),
	})

	out, err := uc.Build(ctx, testCompanyID, in)
	require.NoError(t, err)

	assert.Equal(t, "150.85", out.Subtotal.StringFixed(2))
	assert.Equal(t, "27.15", out.IGV.StringFixed(2))
	assert.Equal(t, "178.00", out.Total.StringFixed(2))

	stored, err := docRepo.GetByCompanyAndNumber(ctx, testCompanyID, out.Number)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("178")))
}

func TestBuild_XMLGeneradoQuedaPersistido(t *testing.T) {
	uc, docRepo, _ := newBuildEnv()
	ctx := context.Background()

	out, err := uc.Build(ctx, testCompanyID, boletaRequest())
	require.NoError(t, err)

	stored, err := docRepo.GetByCompanyAndNumber(ctx, testCompanyID, out.Number)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.XML)
	assert.True(t, strings.Contains(stored.XML, "B001-00000001"))
	assert.True(t, strings.Contains(stored.XML, testRUC))
	assert.Empty(t, stored.SignedXML, "el XML recién construido no está firmado")
}

func TestGetStatus_IncluyeRespuestaDelCDR(t *testing.T) {
	uc, docRepo, _ := newBuildEnv()
	ctx := context.Background()

	doc := pendingDocument(testCompanyID, "B001-00000001")
	doc.State = entity.EstadoAceptado
	doc.Receipt = acceptedReceipt()
	require.NoError(t, docRepo.Save(ctx, doc))

	st, err := uc.GetStatus(ctx, testCompanyID, doc.Number)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoAceptado, st.State)
	assert.Equal(t, entity.RespuestaAceptada, st.ResponseCode)

	_, err = uc.GetStatus(ctx, testCompanyID, "B001-00000099")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
