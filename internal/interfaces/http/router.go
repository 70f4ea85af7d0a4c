package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ttnlab/teif-engine/internal/application/billing"
)

// RouterDeps dépendances du routeur.
type RouterDeps struct {
	ConvertInvoice *billing.ConvertInvoiceUseCase
	VerifyDocument *billing.VerifyDocumentUseCase
	GetDocument    *billing.GetDocumentUseCase
	ListDocuments  *billing.ListDocumentsUseCase
	UpdateStatus   *billing.UpdateStatusUseCase
	JWTSecret      string
}

// Router enregistre les routes de l'API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Routes protégées (Bearer Token requis)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invoices := protected.Group("/invoices")
	handler := NewInvoiceHandler(deps.ConvertInvoice, deps.VerifyDocument, deps.GetDocument, deps.ListDocuments, deps.UpdateStatus)
	invoices.Post("/", RequireRole("emetteur", "admin"), handler.Convert)
	invoices.Get("/", RequireRole("emetteur", "verificateur", "admin"), handler.List)
	invoices.Post("/verify", RequireRole("emetteur", "verificateur", "admin"), handler.Verify)
	invoices.Get("/number/:number", handler.GetByNumber)
	invoices.Patch("/:id/status", RequireRole("emetteur", "admin"), handler.UpdateStatus)
	invoices.Get("/:id", handler.GetByID)
}
