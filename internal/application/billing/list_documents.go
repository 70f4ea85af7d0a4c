package billing

import (
	"context"
	"time"

	"github.com/ttnlab/teif-engine/internal/application/dto"
	"github.com/ttnlab/teif-engine/internal/domain/repository"
)

// ListDocumentsUseCase listage paginé des documents archivés, du plus récent
// au plus ancien. Le XML complet est omis des entrées; il se consulte par
// document.
type ListDocumentsUseCase struct {
	archiveRepo repository.ArchiveRepository
}

func NewListDocumentsUseCase(archiveRepo repository.ArchiveRepository) *ListDocumentsUseCase {
	return &ListDocumentsUseCase{archiveRepo: archiveRepo}
}

// Execute retourne la page demandée. Le dépôt ne connaît qu'une borne haute :
// on lit limite+décalage puis on tronque côté application.
func (uc *ListDocumentsUseCase) Execute(ctx context.Context, page dto.PageRequest) (*dto.DocumentListResponse, error) {
	page.DefaultPage()

	docs, err := uc.archiveRepo.ListRecent(ctx, page.Limit+page.Offset)
	if err != nil {
		return nil, err
	}
	if page.Offset < len(docs) {
		docs = docs[page.Offset:]
	} else {
		docs = nil
	}

	items := make([]dto.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		items = append(items, dto.DocumentSummary{
			ID:                 doc.ID,
			DocumentIdentifier: doc.DocumentIdentifier,
			DocumentTypeCode:   doc.DocumentTypeCode,
			SenderMatricule:    doc.SenderMatricule,
			Currency:           doc.Currency,
			TotalGross:         doc.TotalGross,
			Status:             doc.Status,
			TTNReference:       doc.TTNReference,
			CreatedAt:          doc.CreatedAt.Format(time.RFC3339),
		})
	}

	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}
