package billing

import (
	"context"
	"time"

	"github.com/ttnlab/teif-engine/internal/application/dto"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/internal/domain/repository"
)

// GetDocumentUseCase consultation des documents archivés.
type GetDocumentUseCase struct {
	archiveRepo repository.ArchiveRepository
}

func NewGetDocumentUseCase(archiveRepo repository.ArchiveRepository) *GetDocumentUseCase {
	return &GetDocumentUseCase{archiveRepo: archiveRepo}
}

// Execute retrouve un document par son identifiant d'archive.
func (uc *GetDocumentUseCase) Execute(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.archiveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return documentResponse(doc), nil
}

// ExecuteByIdentifier retrouve un document par son numéro (Bgm).
func (uc *GetDocumentUseCase) ExecuteByIdentifier(ctx context.Context, identifier string) (*dto.DocumentResponse, error) {
	doc, err := uc.archiveRepo.GetByDocumentIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return documentResponse(doc), nil
}

func documentResponse(doc *entity.ArchivedDocument) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:                 doc.ID,
		DocumentIdentifier: doc.DocumentIdentifier,
		DocumentTypeCode:   doc.DocumentTypeCode,
		SenderMatricule:    doc.SenderMatricule,
		Currency:           doc.Currency,
		TotalGross:         doc.TotalGross,
		Status:             doc.Status,
		TTNReference:       doc.TTNReference,
		XML:                doc.XML,
		CreatedAt:          doc.CreatedAt.Format(time.RFC3339),
	}
}
