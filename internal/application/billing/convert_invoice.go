package billing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ttnlab/teif-engine/internal/application/dto"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/internal/domain/repository"
	domteif "github.com/ttnlab/teif-engine/internal/domain/teif"
	"github.com/ttnlab/teif-engine/pkg/logger"
	pkgteif "github.com/ttnlab/teif-engine/pkg/teif"
)

// ConvertInvoiceUseCase orchestre le cycle complet de production d'un document :
//
//	requête → facture typée → assemblage TEIF → signature XAdES-BES → archivage
//
// La clé privée n'est chargée que pour la durée de la signature : le KeyStore
// retourne une fonction de libération qui efface la clé, invoquée en defer.
type ConvertInvoiceUseCase struct {
	builder     DocumentBuilder
	signer      pkgteif.Signer
	keys        KeyStore
	pdf         PDFGenerator // nil = pas de restitution PDF
	archiveRepo repository.ArchiveRepository
	cfg         SigningConfig
	log         *logger.Logger
}

// NewConvertInvoiceUseCase construit le cas d'usage avec ses dépendances.
// pdf peut être nil; keys peut être nil si IncludeSignature est faux.
func NewConvertInvoiceUseCase(
	builder DocumentBuilder,
	signer pkgteif.Signer,
	keys KeyStore,
	pdf PDFGenerator,
	archiveRepo repository.ArchiveRepository,
	cfg SigningConfig,
	log *logger.Logger,
) *ConvertInvoiceUseCase {
	return &ConvertInvoiceUseCase{
		builder:     builder,
		signer:      signer,
		keys:        keys,
		pdf:         pdf,
		archiveRepo: archiveRepo,
		cfg:         cfg,
		log:         log,
	}
}

// Execute convertit la requête en document TEIF, le signe si demandé, puis
// l'archive. Les erreurs conservent leur type du domaine (ValidationError,
// StructureError, SigningError) pour le mappage HTTP.
func (uc *ConvertInvoiceUseCase) Execute(ctx context.Context, req dto.ConvertInvoiceRequest) (*dto.ConvertInvoiceResponse, error) {
	inv, err := req.ToEntity()
	if err != nil {
		return nil, err
	}

	uc.logLineDrift(inv.Lines)

	xmlBytes, err := uc.builder.Build(inv)
	if err != nil {
		return nil, err
	}

	sign := uc.cfg.IncludeSignature
	if req.IncludeSignature != nil {
		sign = *req.IncludeSignature
	}
	if req.Preview {
		sign = false
	}

	status := entity.DocumentStatusPreview
	var signedAt *time.Time
	if sign {
		if uc.signer == nil || uc.keys == nil {
			return nil, &domain.SigningError{
				Stage:   domain.SigningStageKeyLoad,
				Message: "signature demandée mais aucun certificat configuré",
			}
		}
		cert, release, err := uc.keys.Load()
		if err != nil {
			return nil, err
		}
		defer release()

		xmlBytes, err = uc.signer.Sign(xmlBytes, cert, uc.cfg.SignerRole)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		signedAt = &now
		status = entity.DocumentStatusSigned
	}

	doc := &entity.ArchivedDocument{
		ID:                 uuid.NewString(),
		DocumentIdentifier: inv.DocumentIdentifier,
		DocumentTypeCode:   inv.DocumentTypeCode,
		SenderMatricule:    inv.Header.SenderIdentifier,
		ReceiverIdentifier: inv.Header.ReceiverIdentifier,
		Currency:           inv.Currency,
		TotalGross:         req.TotalGross,
		Status:             status,
		XML:                string(xmlBytes),
		SignedAt:           signedAt,
		CreatedAt:          time.Now().UTC(),
	}
	if doc.Currency == "" {
		doc.Currency = pkgteif.CurrencyTND
	}
	if err := uc.archiveRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("archivage du document %s: %w", inv.DocumentIdentifier, err)
	}

	uc.writeOutputs(inv, doc.ID, xmlBytes)

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("identifier", inv.DocumentIdentifier).
		Str("client_id", req.ClientID).
		Str("status", status).
		Bool("signed", sign).
		Msg("document TEIF produit")

	return &dto.ConvertInvoiceResponse{
		ID:     doc.ID,
		Status: status,
		Signed: sign,
		XML:    string(xmlBytes),
	}, nil
}

// logLineDrift journalise en debug les écarts entre le total déclaré d'une
// ligne et le calcul prix unitaire × quantité − remise. L'écart est signalé,
// jamais corrigé : le document reste fidèle aux montants de l'appelant.
func (uc *ConvertInvoiceUseCase) logLineDrift(lines []entity.Line) {
	for _, line := range lines {
		if drift, ok := domteif.LineTotalDrift(line); ok {
			uc.log.Debug().
				Str("line", line.Number).
				Str("drift", drift.String()).
				Msg("écart entre le total de ligne déclaré et le calcul")
		}
		uc.logLineDrift(line.SubLines)
	}
}

// writeOutputs dépose le XML (et le PDF le cas échéant) dans le répertoire de
// sortie. L'échec d'écriture n'invalide pas la conversion : le document est
// déjà archivé; on journalise et on continue.
func (uc *ConvertInvoiceUseCase) writeOutputs(inv *entity.Invoice, documentID string, xmlBytes []byte) {
	if uc.cfg.OutputDir == "" {
		return
	}
	base := filepath.Join(uc.cfg.OutputDir, outputFileName(inv.DocumentIdentifier, documentID))
	if err := os.WriteFile(base+".xml", xmlBytes, 0o644); err != nil {
		uc.log.Warn().Err(err).Str("path", base+".xml").Msg("écriture du XML impossible")
	}
	if uc.pdf == nil {
		return
	}
	pdfBytes, err := uc.pdf.Render(inv, documentID)
	if err != nil {
		uc.log.Warn().Err(err).Str("document_id", documentID).Msg("génération du PDF impossible")
		return
	}
	if err := os.WriteFile(base+".pdf", pdfBytes, 0o644); err != nil {
		uc.log.Warn().Err(err).Str("path", base+".pdf").Msg("écriture du PDF impossible")
	}
}

// outputFileName dérive un nom de fichier sûr du numéro de document fourni par
// l'appelant : les séparateurs de chemin sont neutralisés, et un numéro vide ou
// réduit à des points retombe sur l'identifiant d'archive.
func outputFileName(identifier, documentID string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, identifier)
	if name == "" || name == "." || name == ".." {
		return documentID
	}
	return name
}
