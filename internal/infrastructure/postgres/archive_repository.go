package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/internal/domain/repository"
)

var _ repository.ArchiveRepository = (*ArchiveRepo)(nil)

// ArchiveRepo implémentation d'ArchiveRepository sur PostgreSQL (utilisable
// avec pool ou tx).
type ArchiveRepo struct {
	q Querier
}

// NewArchiveRepository construit l'adaptateur. Passer un pool ou une tx (Querier).
func NewArchiveRepository(q Querier) *ArchiveRepo {
	return &ArchiveRepo{q: q}
}

const archiveColumns = `
	id, document_identifier, document_type_code, sender_matricule,
	receiver_identifier, currency, total_gross, status, xml,
	ttn_reference, signed_at, created_at, updated_at`

// Create persiste un document produit. Le numéro métier (Bgm) est unique.
func (r *ArchiveRepo) Create(ctx context.Context, doc *entity.ArchivedDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.UpdatedAt = doc.CreatedAt

	query := `
		INSERT INTO teif_documents (` + archiveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.DocumentIdentifier, doc.DocumentTypeCode, doc.SenderMatricule,
		nullIfEmpty(doc.ReceiverIdentifier), doc.Currency, doc.TotalGross,
		doc.Status, doc.XML, nullIfEmpty(doc.TTNReference), doc.SignedAt,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document %q déjà archivé: %w", doc.DocumentIdentifier, domain.ErrDuplicate)
		}
		return fmt.Errorf("insertion du document: %w", err)
	}
	return nil
}

// UpdateStatus fait avancer le statut (et la référence TTN le cas échéant).
func (r *ArchiveRepo) UpdateStatus(ctx context.Context, id, status, ttnReference string) error {
	query := `
		UPDATE teif_documents
		SET status        = $2,
		    ttn_reference = COALESCE($3, ttn_reference),
		    updated_at    = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status, nullIfEmpty(ttnReference), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mise à jour du statut: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrouve un document archivé par son identifiant.
func (r *ArchiveRepo) GetByID(ctx context.Context, id string) (*entity.ArchivedDocument, error) {
	query := `SELECT ` + archiveColumns + ` FROM teif_documents WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByDocumentIdentifier retrouve un document par son numéro métier (Bgm).
func (r *ArchiveRepo) GetByDocumentIdentifier(ctx context.Context, identifier string) (*entity.ArchivedDocument, error) {
	query := `SELECT ` + archiveColumns + ` FROM teif_documents WHERE document_identifier = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, identifier))
}

// ListRecent liste les derniers documents produits, du plus récent au plus ancien.
func (r *ArchiveRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ArchivedDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + archiveColumns + ` FROM teif_documents ORDER BY created_at DESC LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("liste des documents: %w", err)
	}
	defer rows.Close()

	var list []*entity.ArchivedDocument
	for rows.Next() {
		doc, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

func (r *ArchiveRepo) scanOne(row pgx.Row) (*entity.ArchivedDocument, error) {
	var doc entity.ArchivedDocument
	var receiver, ttnRef *string
	err := row.Scan(
		&doc.ID, &doc.DocumentIdentifier, &doc.DocumentTypeCode, &doc.SenderMatricule,
		&receiver, &doc.Currency, &doc.TotalGross, &doc.Status, &doc.XML,
		&ttnRef, &doc.SignedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lecture du document: %w", err)
	}
	doc.ReceiverIdentifier = derefStr(receiver)
	doc.TTNReference = derefStr(ttnRef)
	return &doc, nil
}
