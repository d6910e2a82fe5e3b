package billing_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia y del billService
// ──────────────────────────────────────────────────────────────────────────────

type fakeSeqRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
	fail error // si no es nil, AtomicIncrement falla
}

func newFakeSeqRepo() *fakeSeqRepo {
	return &fakeSeqRepo{seqs: make(map[string]int64)}
}

func (r *fakeSeqRepo) AtomicIncrement(_ context.Context, companyID, docType, series string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	key := companyID + "|" + docType + "|" + series
	r.seqs[key]++
	return r.seqs[key], nil
}

func (r *fakeSeqRepo) Current(_ context.Context, companyID, docType, series string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seqs[companyID+"|"+docType+"|"+series], nil
}

type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[string]*entity.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*entity.Document)}
}

func docKey(companyID, number string) string { return companyID + "|" + number }

func (r *fakeDocRepo) Save(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := docKey(doc.CompanyID, doc.Number)
	if _, ok := r.docs[key]; ok {
		return errors.New("numero duplicado")
	}
	cp := *doc
	r.docs[key] = &cp
	return nil
}

func (r *fakeDocRepo) GetByCompanyAndNumber(_ context.Context, companyID, number string) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docKey(companyID, number)]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDocRepo) SetState(_ context.Context, companyID, number, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docKey(companyID, number)]
	if !ok {
		return errors.New("no existe")
	}
	doc.State = state
	return nil
}

func (r *fakeDocRepo) SetSignedXML(_ context.Context, companyID, number, signedXML string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docKey(companyID, number)]
	if !ok {
		return errors.New("no existe")
	}
	doc.SignedXML = signedXML
	return nil
}

func (r *fakeDocRepo) SetTicket(_ context.Context, companyID, number, ticket string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docKey(companyID, number)]
	if !ok {
		return errors.New("no existe")
	}
	doc.TicketID = ticket
	return nil
}

func (r *fakeDocRepo) AttachReceipt(_ context.Context, companyID, number, state, reason string, receipt *entity.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docKey(companyID, number)]
	if !ok {
		return errors.New("no existe")
	}
	doc.State = state
	doc.RejectionReason = reason
	doc.Receipt = receipt
	return nil
}

func (r *fakeDocRepo) ListByCompanyAndState(_ context.Context, companyID, state string, limit, offset int) ([]*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Document
	for _, doc := range r.docs {
		if doc.CompanyID == companyID && doc.State == state {
			cp := *doc
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// state lee el estado actual persistido, para aserciones.
func (r *fakeDocRepo) state(companyID, number string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docKey(companyID, number)]
	if !ok {
		return ""
	}
	return doc.State
}

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func newFakeCompanyRepo(companies ...*entity.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: make(map[string]*entity.Company)}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.companies[id], nil
}

func (r *fakeCompanyRepo) GetByRUC(_ context.Context, ruc string) (*entity.Company, error) {
	for _, c := range r.companies {
		if c.RUC == ruc {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) List(_ context.Context, _, _ int) ([]*entity.Company, error) {
	var out []*entity.Company
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

type fakeCertRepo struct {
	certs map[string]*entity.Certificate
}

func newFakeCertRepo(certs ...*entity.Certificate) *fakeCertRepo {
	r := &fakeCertRepo{certs: make(map[string]*entity.Certificate)}
	for _, c := range certs {
		r.certs[c.CompanyID] = c
	}
	return r
}

func (r *fakeCertRepo) GetByCompany(_ context.Context, companyID string) (*entity.Certificate, error) {
	return r.certs[companyID], nil
}

func (r *fakeCertRepo) Put(_ context.Context, cert *entity.Certificate) error {
	r.certs[cert.CompanyID] = cert
	return nil
}

// fakeSigner devuelve el XML con un sufijo fijo y cuenta las invocaciones.
type fakeSigner struct {
	calls int
	err   error
}

func (s *fakeSigner) Sign(_ context.Context, xmlContent []byte, _ *entity.Certificate) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append(append([]byte{}, xmlContent...), []byte("<!--firmado-->")...), nil
}

// fakeSubmitter responde con una secuencia programada: cada llamada a SendBill
// consume la siguiente respuesta.
type submitterStep struct {
	receipt *entity.Receipt
	err     error
}

type fakeSubmitter struct {
	mu     sync.Mutex
	steps  []submitterStep
	calls  int
	ticket string // respuesta de SendSummary
	status *entity.Receipt
}

func (s *fakeSubmitter) SendBill(_ context.Context, _ string, _ []byte, _ sunat.SOLCredentials) (*entity.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls >= len(s.steps) {
		return nil, errors.New("sin respuestas programadas")
	}
	step := s.steps[s.calls]
	s.calls++
	return step.receipt, step.err
}

func (s *fakeSubmitter) SendSummary(_ context.Context, _ string, _ []byte, _ sunat.SOLCredentials) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.ticket == "" {
		return "", errors.New("sin ticket programado")
	}
	return s.ticket, nil
}

func (s *fakeSubmitter) GetStatus(_ context.Context, _ string, _ sunat.SOLCredentials) (*entity.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return nil, errors.New("sin estado programado")
	}
	return s.status, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Constructores de datos de prueba
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "00000000-0000-0000-0000-0000000000aa"
	testRUC       = "20100070970" // dígito verificador válido
)

func testCompany() *entity.Company {
	return &entity.Company{
		ID:           testCompanyID,
		RUC:          testRUC,
		BusinessName: "Comercial Andina S.A.C.",
		Address:      "Av. Arequipa 1234, Lima",
		Status:       "active",
		SOLUser:      "MODDATOS",
		SOLPassword:  "moddatos",
	}
}

func testCertificate(companyID string) *entity.Certificate {
	now := time.Now()
	return &entity.Certificate{
		ID:        "cert-1",
		CompanyID: companyID,
		Material:  []byte("material"),
		Authority: "Test CA",
		IssuedAt:  now.Add(-24 * time.Hour),
		ExpiresAt: now.Add(365 * 24 * time.Hour),
	}
}

func pendingDocument(companyID, number string) *entity.Document {
	return &entity.Document{
		ID:          "doc-" + number,
		CompanyID:   companyID,
		Type:        sunat.DocTypeBoleta,
		Series:      "B001",
		Correlative: 1,
		Number:      number,
		IssueDate:   time.Now(),
		Currency:    sunat.CurrencyPEN,

		IssuerRUC:  testRUC,
		IssuerName: "Comercial Andina S.A.C.",

		CustomerIdentityType:   sunat.IdentityTypeDNI,
		CustomerIdentityNumber: "12345678",
		CustomerName:           "Juan Pérez",

		Items: []entity.DocumentItem{{
			Description:    "Servicio de consultoría",
			UnitCode:       sunat.UnitServicio,
			Quantity:       decimal.NewFromInt(1),
			UnitPrice:      decimal.NewFromInt(100),
			IGVAffectation: sunat.AfectacionGravado,
			Tax:            decimal.NewFromInt(18),
			Total:          decimal.NewFromInt(100),
		}},
		Subtotal: decimal.NewFromInt(100),
		IGV:      decimal.NewFromInt(18),
		Total:    decimal.NewFromInt(118),

		XML:   `<Invoice>contenido</Invoice>`,
		State: entity.EstadoPendiente,
	}
}

func acceptedReceipt() *entity.Receipt {
	return &entity.Receipt{
		ResponseCode: entity.RespuestaAceptada,
		Description:  "La Boleta ha sido aceptada",
		ReceivedAt:   time.Now(),
	}
}
