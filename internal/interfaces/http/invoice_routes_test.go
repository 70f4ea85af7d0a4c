package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttnlab/teif-engine/internal/application/billing"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/internal/infrastructure/teif/signer"
	apphttp "github.com/ttnlab/teif-engine/internal/interfaces/http"
	"github.com/ttnlab/teif-engine/pkg/logger"
)

// memArchiveRepo dépôt en mémoire pour les tests de routes.
type memArchiveRepo struct {
	docs  map[string]*entity.ArchivedDocument
	order []string
}

func newMemArchiveRepo() *memArchiveRepo {
	return &memArchiveRepo{docs: map[string]*entity.ArchivedDocument{}}
}

func (r *memArchiveRepo) Create(_ context.Context, doc *entity.ArchivedDocument) error {
	stored := *doc
	r.docs[doc.ID] = &stored
	r.order = append([]string{doc.ID}, r.order...)
	return nil
}

func (r *memArchiveRepo) UpdateStatus(_ context.Context, id, status, ttnReference string) error {
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc.Status = status
	if ttnReference != "" {
		doc.TTNReference = ttnReference
	}
	return nil
}

func (r *memArchiveRepo) GetByID(_ context.Context, id string) (*entity.ArchivedDocument, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (r *memArchiveRepo) GetByDocumentIdentifier(_ context.Context, identifier string) (*entity.ArchivedDocument, error) {
	for _, id := range r.order {
		if r.docs[id].DocumentIdentifier == identifier {
			copied := *r.docs[id]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", identifier, domain.ErrNotFound)
}

func (r *memArchiveRepo) ListRecent(_ context.Context, limit int) ([]*entity.ArchivedDocument, error) {
	var out []*entity.ArchivedDocument
	for _, id := range r.order {
		if len(out) >= limit {
			break
		}
		copied := *r.docs[id]
		out = append(out, &copied)
	}
	return out, nil
}

type staticBuilder struct{}

func (staticBuilder) Build(*entity.Invoice) ([]byte, error) {
	return []byte(`<TEIF version="1.8.8" controlingAgency="TTN"></TEIF>`), nil
}

// buildAPIApp monte le routeur complet sur un dépôt en mémoire, sans
// signature ni sortie fichier.
func buildAPIApp(repo *memArchiveRepo) *fiber.App {
	log := logger.New(logger.Config{Level: "error"})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ConvertInvoice: billing.NewConvertInvoiceUseCase(
			staticBuilder{}, nil, nil, nil, repo, billing.SigningConfig{}, log),
		VerifyDocument: billing.NewVerifyDocumentUseCase(signer.NewVerificationService(), log),
		GetDocument:    billing.NewGetDocumentUseCase(repo),
		ListDocuments:  billing.NewListDocumentsUseCase(repo),
		UpdateStatus:   billing.NewUpdateStatusUseCase(repo, log),
		JWTSecret:      testJWTSecret,
	})
	return app
}

func apiRequest(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seedArchived(t *testing.T, repo *memArchiveRepo, id, identifier, status string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &entity.ArchivedDocument{
		ID:                 id,
		DocumentIdentifier: identifier,
		DocumentTypeCode:   "I-11",
		SenderMatricule:    testMatricule,
		Currency:           "TND",
		Status:             status,
		XML:                "<TEIF></TEIF>",
		CreatedAt:          time.Now().UTC(),
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversion : l'émetteur absent du corps est repris du matricule du token.
// ──────────────────────────────────────────────────────────────────────────────

func TestRoutes_ConversionEmetteurDepuisLeToken(t *testing.T) {
	repo := newMemArchiveRepo()
	app := buildAPIApp(repo)

	resp := apiRequest(t, app, http.MethodPost, "/api/v1/invoices", "emetteur", fiber.Map{
		"number":     "FA-2026-0300",
		"issue_date": "2026-02-03",
		"preview":    true,
		"seller":     fiber.Map{"name": "Société El Bouniane SARL"},
		"buyer":      fiber.Map{"name": "Client Distribution SA"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeJSON(t, resp)

	archived, err := repo.GetByID(context.Background(), body["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, testMatricule, archived.SenderMatricule)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cycle de vie par l'API : soumission, consultation par numéro, listage.
// ──────────────────────────────────────────────────────────────────────────────

func TestRoutes_SoumissionPuisConsultation(t *testing.T) {
	repo := newMemArchiveRepo()
	seedArchived(t, repo, "doc-1", "FA-2026-0301", entity.DocumentStatusSigned)
	app := buildAPIApp(repo)

	resp := apiRequest(t, app, http.MethodPatch, "/api/v1/invoices/doc-1/status", "admin", fiber.Map{
		"status":        entity.DocumentStatusSubmitted,
		"ttn_reference": "TTN-REF-4217",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, entity.DocumentStatusSubmitted, body["status"])
	assert.Equal(t, "TTN-REF-4217", body["ttn_reference"])

	resp = apiRequest(t, app, http.MethodGet, "/api/v1/invoices/number/FA-2026-0301", "verificateur", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeJSON(t, resp)
	assert.Equal(t, "TTN-REF-4217", body["ttn_reference"])

	resp = apiRequest(t, app, http.MethodGet, "/api/v1/invoices?limit=1", "verificateur", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeJSON(t, resp)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "FA-2026-0301", first["document_identifier"])
	_, hasXML := first["xml"]
	assert.False(t, hasXML, "le listage ne doit pas embarquer le XML complet")
}

func TestRoutes_TransitionInterdite(t *testing.T) {
	repo := newMemArchiveRepo()
	seedArchived(t, repo, "doc-1", "FA-2026-0302", entity.DocumentStatusPreview)
	app := buildAPIApp(repo)

	resp := apiRequest(t, app, http.MethodPatch, "/api/v1/invoices/doc-1/status", "admin", fiber.Map{
		"status":        entity.DocumentStatusSubmitted,
		"ttn_reference": "TTN-REF-1",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decodeJSON(t, resp)["code"])
}

func TestRoutes_SoumissionRefuseeAuVerificateur(t *testing.T) {
	repo := newMemArchiveRepo()
	seedArchived(t, repo, "doc-1", "FA-2026-0303", entity.DocumentStatusSigned)
	app := buildAPIApp(repo)

	resp := apiRequest(t, app, http.MethodPatch, "/api/v1/invoices/doc-1/status", "verificateur", fiber.Map{
		"status":        entity.DocumentStatusSubmitted,
		"ttn_reference": "TTN-REF-1",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
