package repository

import (
	"context"

	"github.com/ttnlab/teif-engine/internal/domain/entity"
)

// ArchiveRepository définit le port de persistance des documents TEIF produits.
type ArchiveRepository interface {
	Create(ctx context.Context, doc *entity.ArchivedDocument) error
	// UpdateStatus fait avancer le statut (et la référence TTN le cas échéant).
	UpdateStatus(ctx context.Context, id, status, ttnReference string) error
	GetByID(ctx context.Context, id string) (*entity.ArchivedDocument, error)
	// GetByDocumentIdentifier retrouve un document par son numéro métier (Bgm).
	GetByDocumentIdentifier(ctx context.Context, identifier string) (*entity.ArchivedDocument, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.ArchivedDocument, error)
}
