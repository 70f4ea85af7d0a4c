package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ttnlab/teif-engine/internal/application/billing"
	infrapdf "github.com/ttnlab/teif-engine/internal/infrastructure/pdf"
	"github.com/ttnlab/teif-engine/internal/infrastructure/postgres"
	infrateif "github.com/ttnlab/teif-engine/internal/infrastructure/teif"
	"github.com/ttnlab/teif-engine/internal/infrastructure/teif/signer"
	httpRouter "github.com/ttnlab/teif-engine/internal/interfaces/http"
	"github.com/ttnlab/teif-engine/pkg/config"
	"github.com/ttnlab/teif-engine/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("chargement de la configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("démarrage de l'application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion à PostgreSQL")
	}
	defer pool.Close()

	archiveRepo := postgres.NewArchiveRepository(pool)

	// Moteur TEIF : assemblage → signature XAdES-BES → archivage
	assembler := infrateif.NewAssemblerService()
	signatureSvc := signer.NewSignatureServiceWithMinBits(cfg.TEIF.MinRSABits)
	verificationSvc := signer.NewVerificationService()
	keyStore := signer.NewFileKeyStore(
		cfg.TEIF.CertPath, cfg.TEIF.CertKeyPath,
		cfg.TEIF.CertPassword, cfg.TEIF.CertChainPath,
	)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	signingCfg := billing.SigningConfig{
		SignerRole:       cfg.TEIF.SignerRole,
		IncludeSignature: cfg.TEIF.IncludeSignature && cfg.TEIF.CertPath != "",
		OutputDir:        cfg.TEIF.OutputDir,
	}
	if cfg.TEIF.IncludeSignature && cfg.TEIF.CertPath == "" {
		log.Warn().Msg("TEIF_CERT_PATH absent : les documents seront produits sans signature")
	}

	convertUC := billing.NewConvertInvoiceUseCase(
		assembler, signatureSvc, keyStore, pdfGenerator,
		archiveRepo, signingCfg, log,
	)
	verifyUC := billing.NewVerifyDocumentUseCase(verificationSvc, log)
	getUC := billing.NewGetDocumentUseCase(archiveRepo)
	listUC := billing.NewListDocumentsUseCase(archiveRepo)
	statusUC := billing.NewUpdateStatusUseCase(archiveRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ConvertInvoice: convertUC,
		VerifyDocument: verifyUC,
		GetDocument:    getUC,
		ListDocuments:  listUC,
		UpdateStatus:   statusUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("serveur HTTP terminé")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("signal d'arrêt reçu, fermeture du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("arrêt du serveur")
	}

	log.Info().Msg("application arrêtée")
}
