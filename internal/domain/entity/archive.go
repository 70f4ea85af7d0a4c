package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statuts d'un document archivé.
const (
	DocumentStatusPreview   = "PREVIEW"   // assemblé sans signature (prévisualisation)
	DocumentStatusSigned    = "SIGNED"    // XML signé XAdES-BES, prêt à l'envoi
	DocumentStatusSubmitted = "SUBMITTED" // transmis à la plateforme TTN
	DocumentStatusRejected  = "REJECTED"  // rejeté par la plateforme
)

// ArchivedDocument : trace persistée d'une conversion (XML final inclus).
type ArchivedDocument struct {
	ID                 string
	DocumentIdentifier string
	DocumentTypeCode   string
	SenderMatricule    string
	ReceiverIdentifier string
	Currency           string
	TotalGross         decimal.Decimal
	Status             string
	XML                string // document TEIF final (signé ou non)
	TTNReference       string // référence RefTtnVal retournée par la plateforme
	SignedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
