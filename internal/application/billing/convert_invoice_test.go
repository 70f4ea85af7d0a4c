package billing_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttnlab/teif-engine/internal/application/billing"
	"github.com/ttnlab/teif-engine/internal/application/dto"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/logger"
)

const testMatricule = "1234567AAM001"

// fakeArchiveRepo dépôt en mémoire pour les tests des cas d'usage; les
// documents sont restitués du plus récent au plus ancien.
type fakeArchiveRepo struct {
	docs  map[string]*entity.ArchivedDocument
	order []string // identifiants, le plus récent en tête
}

func newFakeArchiveRepo() *fakeArchiveRepo {
	return &fakeArchiveRepo{docs: map[string]*entity.ArchivedDocument{}}
}

func (r *fakeArchiveRepo) Create(_ context.Context, doc *entity.ArchivedDocument) error {
	for _, d := range r.docs {
		if d.DocumentIdentifier == doc.DocumentIdentifier {
			return fmt.Errorf("document %q déjà archivé: %w", doc.DocumentIdentifier, domain.ErrDuplicate)
		}
	}
	stored := *doc
	r.docs[doc.ID] = &stored
	r.order = append([]string{doc.ID}, r.order...)
	return nil
}

func (r *fakeArchiveRepo) UpdateStatus(_ context.Context, id, status, ttnReference string) error {
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc.Status = status
	if ttnReference != "" {
		doc.TTNReference = ttnReference
	}
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeArchiveRepo) GetByID(_ context.Context, id string) (*entity.ArchivedDocument, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeArchiveRepo) GetByDocumentIdentifier(_ context.Context, identifier string) (*entity.ArchivedDocument, error) {
	for _, id := range r.order {
		if r.docs[id].DocumentIdentifier == identifier {
			copied := *r.docs[id]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", identifier, domain.ErrNotFound)
}

func (r *fakeArchiveRepo) ListRecent(_ context.Context, limit int) ([]*entity.ArchivedDocument, error) {
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

// staticBuilder renvoie toujours le même document; les cas d'usage de
// conversion se testent ici sans l'assembleur réel.
type staticBuilder struct{}

func (staticBuilder) Build(*entity.Invoice) ([]byte, error) {
	return []byte(`<TEIF version="1.8.8" controlingAgency="TTN"></TEIF>`), nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func previewRequest(number string) dto.ConvertInvoiceRequest {
	return dto.ConvertInvoiceRequest{
		Sender:    testMatricule,
		Number:    number,
		IssueDate: "2026-02-03",
		Seller:    dto.PartnerDTO{Name: "Société El Bouniane SARL"},
		Buyer:     dto.PartnerDTO{Name: "Client Distribution SA"},
		Preview:   true,
	}
}

func newPreviewUseCase(repo *fakeArchiveRepo, outputDir string) *billing.ConvertInvoiceUseCase {
	return billing.NewConvertInvoiceUseCase(
		staticBuilder{}, nil, nil, nil, repo,
		billing.SigningConfig{OutputDir: outputDir},
		testLogger(),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversion en prévisualisation : assemblage et archivage sans signature.
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_Apercu(t *testing.T) {
	repo := newFakeArchiveRepo()
	uc := newPreviewUseCase(repo, "")

	resp, err := uc.Execute(context.Background(), previewRequest("FA-2026-0100"))
	require.NoError(t, err)
	assert.False(t, resp.Signed)
	assert.Equal(t, entity.DocumentStatusPreview, resp.Status)

	archived, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "FA-2026-0100", archived.DocumentIdentifier)
	assert.Nil(t, archived.SignedAt)
}

func TestConvert_NumeroDuplique(t *testing.T) {
	repo := newFakeArchiveRepo()
	uc := newPreviewUseCase(repo, "")

	_, err := uc.Execute(context.Background(), previewRequest("FA-2026-0101"))
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), previewRequest("FA-2026-0101"))
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sorties fichier : le numéro de document vient de l'appelant et ne doit
// jamais faire sortir l'écriture du répertoire configuré.
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_SortieDansLeRepertoire(t *testing.T) {
	outputDir := t.TempDir()
	uc := newPreviewUseCase(newFakeArchiveRepo(), outputDir)

	_, err := uc.Execute(context.Background(), previewRequest("FA-2026-0102"))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outputDir, "FA-2026-0102.xml"))
}

func TestConvert_NumeroHostileConfine(t *testing.T) {
	root := t.TempDir()
	outputDir := filepath.Join(root, "sortie")
	require.NoError(t, os.Mkdir(outputDir, 0o755))
	uc := newPreviewUseCase(newFakeArchiveRepo(), outputDir)

	_, err := uc.Execute(context.Background(), previewRequest("../evasion"))
	require.NoError(t, err)

	// le séparateur est neutralisé, rien ne remonte au-dessus du répertoire
	assert.NoFileExists(t, filepath.Join(root, "evasion.xml"))
	assert.FileExists(t, filepath.Join(outputDir, ".._evasion.xml"))
}

func TestConvert_NumeroAbsoluConfine(t *testing.T) {
	root := t.TempDir()
	outputDir := filepath.Join(root, "sortie")
	require.NoError(t, os.Mkdir(outputDir, 0o755))
	uc := newPreviewUseCase(newFakeArchiveRepo(), outputDir)

	hostile := filepath.Join(root, "pirate")
	_, err := uc.Execute(context.Background(), previewRequest(hostile))
	require.NoError(t, err)

	assert.NoFileExists(t, hostile+".xml")

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
