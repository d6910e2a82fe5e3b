package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	domsunat "github.com/jhoicas/facturacion-sunat/internal/domain/sunat"
	infrasunat "github.com/jhoicas/facturacion-sunat/internal/infrastructure/sunat"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// SUNATOrchestrator orquesta el ciclo completo de un comprobante frente a SUNAT:
//
//	Firma → ZIP → sendBill con reintentos → Reconciliación del CDR → Update DB
//
// Reglas del ciclo:
//   - El reenvío reutiliza el XML firmado almacenado: nunca se re-firma ni
//     se re-numera un comprobante existente.
//   - ENVIADO se persiste antes del primer intento; si la ronda de reintentos
//     se agota sin respuesta, el comprobante vuelve a PENDIENTE.
//   - Un SOAP Fault de SUNAT solo rechaza el comprobante si su código está en
//     el rango de errores de contenido (2000–3999); los faults de credenciales
//     o del sistema devuelven el comprobante a PENDIENTE.
type SUNATOrchestrator struct {
	docRepo     repository.DocumentRepository
	companyRepo repository.CompanyRepository
	certRepo    repository.CertificateRepository
	seqRepo     repository.SequenceRepository
	signUC      *SignUseCase
	signer      DocumentSigner
	submitter   Submitter
	retry       *RetryCoordinator
	reconciler  *ResponseReconciler
}

// NewSUNATOrchestrator construye el orquestador con todas sus dependencias.
func NewSUNATOrchestrator(
	docRepo repository.DocumentRepository,
	companyRepo repository.CompanyRepository,
	certRepo repository.CertificateRepository,
	seqRepo repository.SequenceRepository,
	signUC *SignUseCase,
	signer DocumentSigner,
	submitter Submitter,
	retry *RetryCoordinator,
	reconciler *ResponseReconciler,
) *SUNATOrchestrator {
	return &SUNATOrchestrator{
		docRepo:     docRepo,
		companyRepo: companyRepo,
		certRepo:    certRepo,
		seqRepo:     seqRepo,
		signUC:      signUC,
		signer:      signer,
		submitter:   submitter,
		retry:       retry,
		reconciler:  reconciler,
	}
}

// Submit envía el comprobante (companyID, number) a SUNAT. Si aún no está
// firmado lo firma primero; si ya lo está (reenvío de un PENDIENTE), reutiliza
// el XML firmado tal cual.
func (o *SUNATOrchestrator) Submit(ctx context.Context, companyID, number string) (*dto.SubmitResultDTO, error) {
	doc, err := o.docRepo.GetByCompanyAndNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if entity.IsTerminalState(doc.State) {
		return nil, domain.ErrConflict
	}
	// Los agregados almacenados deben seguir siendo coherentes con las líneas
	// antes de declarar el comprobante ante SUNAT.
	if err := domsunat.ValidateTotals(doc); err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}

	if doc.SignedXML == "" {
		doc, err = o.signUC.SignDocument(ctx, companyID, number)
		if err != nil {
			return nil, err
		}
	}

	company, err := o.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	creds := sunat.SOLCredentials{RUC: company.RUC, User: company.SOLUser, Password: company.SOLPassword}

	stem := sunat.FileStem(company.RUC, doc.Type, doc.Number)
	zipBytes, err := infrasunat.PackSignedXML([]byte(doc.SignedXML), stem+".xml")
	if err != nil {
		return nil, fmt.Errorf("empaquetar %s: %w", stem, err)
	}

	// ENVIADO antes del primer intento: si el proceso muere a mitad del envío,
	// el estado refleja que pudo haber llegado a SUNAT.
	if err := o.docRepo.SetState(ctx, companyID, number, entity.EstadoEnviado); err != nil {
		return nil, errors.Join(domain.ErrPersistence, err)
	}

	result, err := o.retry.ExecuteWithRetry(ctx, func(ctx context.Context) (*entity.Receipt, error) {
		return o.submitter.SendBill(ctx, stem+".zip", zipBytes, creds)
	})
	if err != nil {
		// Un fault con código de rechazo de comprobante (2000–3999) es un
		// veredicto de SUNAT sobre el documento: queda RECHAZADO.
		var fault *domain.RemoteFaultError
		if errors.As(err, &fault) && fault.RejectsDocument() {
			receipt := &entity.Receipt{
				ResponseCode: fault.Code,
				Description:  fault.Message,
				ReceivedAt:   time.Now(),
			}
			if _, rerr := o.reconciler.Reconcile(ctx, companyID, number, receipt); rerr != nil {
				return nil, rerr
			}
			return &dto.SubmitResultDTO{
				Number:       number,
				State:        entity.EstadoRechazado,
				Attempts:     result.TotalAttempts,
				ResponseCode: fault.Code,
				Description:  fault.Message,
			}, nil
		}
		// Fault de credenciales o del sistema, o error terminal sin respuesta:
		// no es un veredicto sobre el comprobante. Vuelve a PENDIENTE con su
		// número intacto y el error se propaga al caller.
		if serr := o.docRepo.SetState(ctx, companyID, number, entity.EstadoPendiente); serr != nil {
			log.Error().Err(serr).Str("number", number).Msg("no se pudo devolver el comprobante a PENDIENTE")
		}
		return nil, err
	}

	if !result.Success {
		log.Warn().Str("number", number).Int("intentos", result.TotalAttempts).
			Msg("reintentos agotados sin respuesta de SUNAT; comprobante de vuelta a PENDIENTE")
		if err := o.docRepo.SetState(ctx, companyID, number, entity.EstadoPendiente); err != nil {
			return nil, errors.Join(domain.ErrPersistence, err)
		}
		return &dto.SubmitResultDTO{
			Number:   number,
			State:    entity.EstadoPendiente,
			Attempts: result.TotalAttempts,
		}, nil
	}

	receipt := result.Receipt
	if receipt == nil {
		return nil, domain.ErrNoReceipt
	}
	if receipt.IsTicket() {
		// Envío aceptado en modo asíncrono: guardar el ticket y dejar el
		// comprobante ENVIADO hasta que getStatus lo resuelva.
		if err := o.docRepo.SetTicket(ctx, companyID, number, receipt.Description); err != nil {
			return nil, errors.Join(domain.ErrPersistence, err)
		}
		return &dto.SubmitResultDTO{
			Number:   number,
			State:    entity.EstadoEnviado,
			Attempts: result.TotalAttempts,
		}, nil
	}

	reconciled, err := o.reconciler.Reconcile(ctx, companyID, number, receipt)
	if err != nil {
		return nil, err
	}
	log.Info().Str("number", number).Str("estado", reconciled.State).
		Str("codigo", receipt.ResponseCode).Int("intentos", result.TotalAttempts).
		Msg("comprobante reconciliado")
	return &dto.SubmitResultDTO{
		Number:       number,
		State:        reconciled.State,
		Attempts:     result.TotalAttempts,
		ResponseCode: receipt.ResponseCode,
		Description:  receipt.Description,
	}, nil
}

// CheckTicket consulta en SUNAT el ticket pendiente del comprobante y, si ya
// hay CDR, reconcilia el estado terminal.
func (o *SUNATOrchestrator) CheckTicket(ctx context.Context, companyID, number string) (*dto.DocumentStatusDTO, error) {
	doc, err := o.docRepo.GetByCompanyAndNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.TicketID == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("el comprobante no tiene ticket pendiente"))
	}

	company, err := o.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	creds := sunat.SOLCredentials{RUC: company.RUC, User: company.SOLUser, Password: company.SOLPassword}

	receipt, err := o.submitter.GetStatus(ctx, doc.TicketID, creds)
	if err != nil {
		return nil, err
	}
	if receipt.IsTicket() {
		// Sigue en proceso.
		return &dto.DocumentStatusDTO{Number: number, State: doc.State, TicketID: doc.TicketID}, nil
	}
	reconciled, err := o.reconciler.Reconcile(ctx, companyID, number, receipt)
	if err != nil {
		return nil, err
	}
	return &dto.DocumentStatusDTO{
		Number:       number,
		State:        reconciled.State,
		ResponseCode: receipt.ResponseCode,
		Description:  receipt.Description,
		TicketID:     doc.TicketID,
	}, nil
}

// SubmitVoided arma y envía una comunicación de baja (sendSummary): XML de
// VoidedDocuments firmado, empaquetado como RUC-RA-AAAAMMDD-N y enviado a
// SUNAT, que responde con un ticket.
func (o *SUNATOrchestrator) SubmitVoided(ctx context.Context, companyID string, in dto.VoidDocumentsRequest) (*dto.VoidDocumentsResponse, error) {
	if len(in.Documents) == 0 {
		return nil, domain.ErrInvalidInput
	}
	refDate, err := time.Parse("2006-01-02", in.ReferenceDate)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("reference_date: %w", err))
	}

	company, err := o.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	// Correlativo diario de la comunicación: RA-AAAAMMDD-N.
	day := time.Now().Format("20060102")
	seq, err := o.seqRepo.AtomicIncrement(ctx, companyID, "RA", day)
	if err != nil {
		return nil, errors.Join(domain.ErrAllocation, err)
	}
	voidedID := fmt.Sprintf("RA-%s-%d", day, seq)

	items := make([]infrasunat.VoidedItem, len(in.Documents))
	for i, d := range in.Documents {
		items[i] = infrasunat.VoidedItem{
			DocType: d.Type,
			Series:  d.Series,
			Number:  d.Number,
			Reason:  d.Reason,
		}
	}
	xmlBytes, err := infrasunat.BuildVoidedDocumentsXML(company, voidedID, refDate, items)
	if err != nil {
		return nil, fmt.Errorf("generar comunicación de baja: %w", err)
	}

	cert, err := o.certRepo.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, domain.ErrCertificateNotFound
	}
	signed, err := o.signer.Sign(ctx, xmlBytes, cert)
	if err != nil {
		return nil, errors.Join(domain.ErrSigning, err)
	}

	stem := company.RUC + "-" + voidedID
	zipBytes, err := infrasunat.PackSignedXML(signed, stem+".xml")
	if err != nil {
		return nil, fmt.Errorf("empaquetar %s: %w", stem, err)
	}

	creds := sunat.SOLCredentials{RUC: company.RUC, User: company.SOLUser, Password: company.SOLPassword}
	var ticket string
	result, err := o.retry.ExecuteWithRetry(ctx, func(ctx context.Context) (*entity.Receipt, error) {
		t, serr := o.submitter.SendSummary(ctx, stem+".zip", zipBytes, creds)
		if serr != nil {
			return nil, serr
		}
		ticket = t
		return &entity.Receipt{ResponseCode: entity.ReceiptCodeTicket, Description: t, ReceivedAt: time.Now()}, nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, errors.Join(domain.ErrNoReceipt, result.LastErr)
	}

	// El ticket queda asociado a cada comprobante dado de baja para que
	// CheckTicket pueda resolverlos.
	for _, d := range in.Documents {
		number := d.Series + "-" + d.Number
		if err := o.docRepo.SetTicket(ctx, companyID, number, ticket); err != nil {
			log.Error().Err(err).Str("number", number).Msg("no se pudo asociar el ticket de baja")
		}
	}
	log.Info().Str("voided_id", voidedID).Str("ticket", ticket).Msg("comunicación de baja enviada")
	return &dto.VoidDocumentsResponse{TicketID: ticket}, nil
}
