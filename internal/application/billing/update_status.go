package billing

import (
	"context"
	"fmt"

	"github.com/ttnlab/teif-engine/internal/application/dto"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/internal/domain/repository"
	"github.com/ttnlab/teif-engine/pkg/logger"
)

// UpdateStatusUseCase fait progresser un document archivé dans son cycle de
// vie TTN : SIGNED passe à SUBMITTED en enregistrant la référence RefTtnVal
// retournée par la plateforme, SUBMITTED peut être rejeté. Les autres
// transitions sont refusées; une prévisualisation non signée ne se soumet pas.
type UpdateStatusUseCase struct {
	archiveRepo repository.ArchiveRepository
	log         *logger.Logger
}

func NewUpdateStatusUseCase(archiveRepo repository.ArchiveRepository, log *logger.Logger) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{archiveRepo: archiveRepo, log: log}
}

var statusTransitions = map[string][]string{
	entity.DocumentStatusSigned:    {entity.DocumentStatusSubmitted},
	entity.DocumentStatusSubmitted: {entity.DocumentStatusRejected},
}

// Execute applique la transition demandée et retourne le document à jour.
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, id string, req dto.UpdateStatusRequest) (*dto.DocumentResponse, error) {
	doc, err := uc.archiveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case entity.DocumentStatusSubmitted, entity.DocumentStatusRejected:
	default:
		return nil, fmt.Errorf("statut cible %q inconnu: %w", req.Status, domain.ErrInvalidInput)
	}
	if !transitionAllowed(doc.Status, req.Status) {
		return nil, fmt.Errorf("transition de %s vers %s interdite: %w", doc.Status, req.Status, domain.ErrConflict)
	}
	if req.Status == entity.DocumentStatusSubmitted && req.TTNReference == "" {
		return nil, fmt.Errorf("référence TTN requise pour la soumission: %w", domain.ErrInvalidInput)
	}

	if err := uc.archiveRepo.UpdateStatus(ctx, id, req.Status, req.TTNReference); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("document_id", id).
		Str("from", doc.Status).
		Str("to", req.Status).
		Str("ttn_reference", req.TTNReference).
		Msg("statut du document mis à jour")

	doc.Status = req.Status
	if req.TTNReference != "" {
		doc.TTNReference = req.TTNReference
	}
	return documentResponse(doc), nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
