package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/facturacion-sunat/internal/application/auth"
	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/application/usecase"
	infrapdf "github.com/jhoicas/facturacion-sunat/internal/infrastructure/pdf"
	"github.com/jhoicas/facturacion-sunat/internal/infrastructure/postgres"
	infrasunat "github.com/jhoicas/facturacion-sunat/internal/infrastructure/sunat"
	"github.com/jhoicas/facturacion-sunat/internal/infrastructure/sunat/signer"
	httpRouter "github.com/jhoicas/facturacion-sunat/internal/interfaces/http"
	"github.com/jhoicas/facturacion-sunat/pkg/config"
	"github.com/jhoicas/facturacion-sunat/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sunat_env", cfg.SUNAT.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	certificateRepo := postgres.NewCertificateRepository(pool)

	// Ciclo del comprobante: numeración → XML UBL → firma → envío → CDR
	xmlBuilder := infrasunat.NewXMLBuilderService()
	signerSvc := signer.NewDigitalSignatureService()
	soapClient := infrasunat.NewBillServiceClient(infrasunat.ClientConfig{
		Environment: cfg.SUNAT.Environment,
		EndpointURL: cfg.SUNAT.EndpointURL,
		Timeout:     time.Duration(cfg.SUNAT.TimeoutSeconds) * time.Second,
	})

	allocator := billing.NewNumberAllocator(sequenceRepo)
	buildUC := billing.NewBuildDocumentUseCase(companyRepo, documentRepo, allocator, xmlBuilder)
	signUC := billing.NewSignUseCase(documentRepo, certificateRepo, signerSvc)
	retry := billing.NewRetryCoordinator(cfg.SUNAT.MaxAttempts, nil)
	reconciler := billing.NewResponseReconciler(documentRepo)
	orchestrator := billing.NewSUNATOrchestrator(
		documentRepo, companyRepo, certificateRepo, sequenceRepo,
		signUC, signerSvc, soapClient, retry, reconciler,
	)

	// PDF: representación impresa del comprobante
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := billing.NewPDFUseCase(documentRepo, companyRepo, pdfGenerator)

	companyUC := usecase.NewCompanyUseCase(companyRepo, certificateRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación SUNAT API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:    companyUC,
		BuildUC:      buildUC,
		SignUC:       signUC,
		Orchestrator: orchestrator,
		PDFUC:        pdfUC,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
