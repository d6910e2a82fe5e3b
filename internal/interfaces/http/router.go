package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-sunat/internal/application/auth"
	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/application/usecase"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC    *usecase.CompanyUseCase
	BuildUC      *billing.BuildDocumentUseCase
	SignUC       *billing.SignUseCase
	Orchestrator *billing.SUNATOrchestrator
	PDFUC        *billing.PDFUseCase
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
// Roles: admin administra empresas y certificados; emisor emite y envía;
// consulta solo lee.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies: alta pública (onboarding); el resto protegido
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies := api.Group("/companies")
	companies.Post("/", companyHandler.Create)

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protCompanies := protected.Group("/companies")
	protCompanies.Get("/", RequireRole(entity.RoleAdmin), companyHandler.List)
	protCompanies.Get("/:id", companyHandler.GetByID)
	protCompanies.Put("/:id", RequireRole(entity.RoleAdmin), companyHandler.Update)
	protCompanies.Post("/:id/certificate", RequireRole(entity.RoleAdmin), companyHandler.UploadCertificate)
	protCompanies.Get("/:id/certificate", companyHandler.GetCertificate)

	// Documents (protegido)
	documentHandler := NewDocumentHandler(deps.BuildUC, deps.SignUC, deps.Orchestrator, deps.PDFUC)
	documents := protected.Group("/documents")
	emitRoles := RequireRole(entity.RoleAdmin, entity.RoleEmisor)
	documents.Post("/", emitRoles, documentHandler.Create)
	documents.Post("/void", emitRoles, documentHandler.Void)
	documents.Get("/", documentHandler.List)
	documents.Get("/:number", documentHandler.Get)
	documents.Get("/:number/status", documentHandler.GetStatus)
	documents.Get("/:number/pdf", documentHandler.DownloadPDF)
	documents.Post("/:number/submit", emitRoles, documentHandler.Submit)
	documents.Post("/:number/check-ticket", emitRoles, documentHandler.CheckTicket)
}
