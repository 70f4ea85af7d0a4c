package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ttnlab/teif-engine/internal/application/billing"
	"github.com/ttnlab/teif-engine/internal/application/dto"
	"github.com/ttnlab/teif-engine/internal/domain"
)

// InvoiceHandler gère les requêtes HTTP du moteur de documents (protégé).
type InvoiceHandler struct {
	convertUC *billing.ConvertInvoiceUseCase
	verifyUC  *billing.VerifyDocumentUseCase
	getUC     *billing.GetDocumentUseCase
	listUC    *billing.ListDocumentsUseCase
	statusUC  *billing.UpdateStatusUseCase
}

// NewInvoiceHandler construit le handler.
func NewInvoiceHandler(
	convertUC *billing.ConvertInvoiceUseCase,
	verifyUC *billing.VerifyDocumentUseCase,
	getUC *billing.GetDocumentUseCase,
	listUC *billing.ListDocumentsUseCase,
	statusUC *billing.UpdateStatusUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{convertUC: convertUC, verifyUC: verifyUC, getUC: getUC, listUC: listUC, statusUC: statusUC}
}

// Convert assemble (et signe) un document TEIF depuis les données de facture.
// Le matricule du token sert d'émetteur par défaut.
// POST /api/v1/invoices
func (h *InvoiceHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps de requête invalide"})
	}
	in.ClientID = GetClientID(c)
	if in.Sender == "" {
		in.Sender = GetMatricule(c)
	}
	resp, err := h.convertUC.Execute(c.Context(), in)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Verify rejoue la vérification d'un document signé.
// POST /api/v1/invoices/verify
func (h *InvoiceHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		// accepter aussi le XML brut en corps de requête
		in.XML = string(c.Body())
	}
	if in.XML == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "document XML requis"})
	}
	resp := h.verifyUC.Execute([]byte(in.XML))
	return c.JSON(resp)
}

// GetByID retrouve un document archivé.
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requis"})
	}
	doc, err := h.getUC.Execute(c.Context(), id)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(doc)
}

// List retourne les documents archivés les plus récents, paginés.
// GET /api/v1/invoices?limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paramètres de pagination invalides"})
	}
	resp, err := h.listUC.Execute(c.Context(), page)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(resp)
}

// GetByNumber retrouve un document par son numéro (Bgm).
// GET /api/v1/invoices/number/:number
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	number := c.Params("number")
	if number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "numéro requis"})
	}
	doc, err := h.getUC.ExecuteByIdentifier(c.Context(), number)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(doc)
}

// UpdateStatus applique une transition de cycle de vie (soumission, rejet).
// PATCH /api/v1/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requis"})
	}
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps de requête invalide"})
	}
	doc, err := h.statusUC.Execute(c.Context(), id, in)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(doc)
}

// writeDomainError traduit la taxonomie d'erreurs du domaine en réponse HTTP.
// Validation et structure sont imputables à l'appelant; la signature est une
// défaillance du serveur.
func writeDomainError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: verr.Message,
			Field:   verr.Section + "." + verr.Field,
		})
	}
	var serr *domain.StructureError
	if errors.As(err, &serr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "STRUCTURE",
			Message: serr.Message,
		})
	}
	var sgerr *domain.SigningError
	if errors.As(err, &sgerr) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    "SIGNING",
			Message: sgerr.Error(),
		})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "document introuvable"})
	}
	if errors.Is(err, domain.ErrDuplicate) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "numéro de document déjà archivé"})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	}
	if errors.Is(err, domain.ErrConflict) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
