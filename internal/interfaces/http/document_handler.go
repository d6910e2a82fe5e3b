package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// DocumentHandler maneja el ciclo de vida HTTP de los comprobantes:
// emisión, consulta, envío a SUNAT, bajas y representación impresa.
type DocumentHandler struct {
	buildUC      *billing.BuildDocumentUseCase
	signUC       *billing.SignUseCase
	orchestrator *billing.SUNATOrchestrator
	pdfUC        *billing.PDFUseCase
}

// NewDocumentHandler construye el handler inyectando los casos de uso.
func NewDocumentHandler(
	buildUC *billing.BuildDocumentUseCase,
	signUC *billing.SignUseCase,
	orchestrator *billing.SUNATOrchestrator,
	pdfUC *billing.PDFUseCase,
) *DocumentHandler {
	return &DocumentHandler{buildUC: buildUC, signUC: signUC, orchestrator: orchestrator, pdfUC: pdfUC}
}

// Create emite un comprobante: valida, asigna número y construye el XML UBL.
// POST /api/documents
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.buildUC.Build(c.Context(), companyID, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "empresa no encontrada"})
		}
		if errors.Is(err, domain.ErrAllocation) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "ALLOCATION", Message: "no se pudo asignar el correlativo"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get obtiene el comprobante completo por su número (SERIE-CORRELATIVO).
// GET /api/documents/:number
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	number := c.Params("number")
	if number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "number requerido"})
	}
	out, err := h.buildUC.GetDocument(c.Context(), companyID, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetStatus respuesta ligera para polling del estado.
// GET /api/documents/:number/status
func (h *DocumentHandler) GetStatus(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	number := c.Params("number")
	if number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "number requerido"})
	}
	out, err := h.buildUC.GetStatus(c.Context(), companyID, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// List lista los comprobantes de la empresa filtrados por estado.
// GET /api/documents?state=PENDIENTE&limit=20&offset=0
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	state := c.Query("state", entity.EstadoPendiente)
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.buildUC.ListByState(c.Context(), companyID, state, page)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Submit firma (si hace falta) y envía el comprobante a SUNAT con reintentos.
// POST /api/documents/:number/submit
func (h *DocumentHandler) Submit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	number := c.Params("number")
	if number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "number requerido"})
	}
	out, err := h.orchestrator.Submit(c.Context(), companyID, number)
	if err != nil {
		return h.mapSubmitError(c, err)
	}
	return c.JSON(out)
}

// CheckTicket resuelve un ticket pendiente (getStatus de SUNAT).
// POST /api/documents/:number/check-ticket
func (h *DocumentHandler) CheckTicket(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	number := c.Params("number")
	if number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "number requerido"})
	}
	out, err := h.orchestrator.CheckTicket(c.Context(), companyID, number)
	if err != nil {
		return h.mapSubmitError(c, err)
	}
	return c.JSON(out)
}

// Void envía una comunicación de baja (VoidedDocuments) y devuelve el ticket.
// POST /api/documents/void
func (h *DocumentHandler) Void(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	var in dto.VoidDocumentsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Documents) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "documents no puede estar vacío"})
	}
	out, err := h.orchestrator.SubmitVoided(c.Context(), companyID, in)
	if err != nil {
		return h.mapSubmitError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// DownloadPDF descarga la representación impresa de un comprobante aceptado.
// GET /api/documents/:number/pdf
func (h *DocumentHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	number := c.Params("number")
	if number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "number requerido"})
	}
	pdfBytes, filename, err := h.pdfUC.DownloadDocumentPDF(c.Context(), companyID, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_ACCEPTED", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// mapSubmitError traduce los errores del flujo firma+envío a códigos HTTP.
func (h *DocumentHandler) mapSubmitError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TERMINAL_STATE", Message: "el comprobante ya está en estado terminal"})
	case errors.Is(err, domain.ErrCertificateNotFound):
		return c.Status(fiber.StatusPreconditionFailed).JSON(dto.ErrorResponse{Code: "CERT_MISSING", Message: "la empresa no tiene certificado digital"})
	case errors.Is(err, domain.ErrCertificateExpired):
		return c.Status(fiber.StatusPreconditionFailed).JSON(dto.ErrorResponse{Code: "CERT_EXPIRED", Message: "el certificado está fuera de vigencia"})
	case errors.Is(err, domain.ErrCertificateMismatch):
		return c.Status(fiber.StatusPreconditionFailed).JSON(dto.ErrorResponse{Code: "CERT_MISMATCH", Message: "el certificado pertenece a otra empresa"})
	case errors.Is(err, domain.ErrEmptyDocument):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "EMPTY_XML", Message: "el comprobante no tiene XML construido"})
	case errors.Is(err, domain.ErrSigning):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "SIGNING", Message: err.Error()})
	case errors.Is(err, domain.ErrReceiptPending):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TICKET_PENDING", Message: "la constancia sigue pendiente de resolución"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
